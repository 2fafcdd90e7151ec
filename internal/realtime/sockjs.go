package realtime

import (
	"encoding/json"
	"net/http"
	"strconv"

	"smartserve/pkg/jwtutil"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"go.uber.org/zap"
)

// Client-to-server actions
const (
	ActionJoin             = "join"
	ActionSendNotification = "sendNotification"
)

// ClientEvent is a message received from a session
type ClientEvent struct {
	Action  string `json:"action"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// ParseEvent decodes a client event, rejecting unknown actions
func ParseEvent(data []byte) (ClientEvent, bool) {
	var event ClientEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ClientEvent{}, false
	}
	if event.Action != ActionJoin && event.Action != ActionSendNotification {
		return ClientEvent{}, false
	}
	return event, true
}

// Authorize checks that the join token is valid and issued to the user whose
// room is being joined. Rooms are keyed by user id, so an unverified join
// would let any session read another user's notifications.
func Authorize(event ClientEvent) bool {
	claims, err := jwtutil.ValidateToken(event.Token)
	if err != nil {
		return false
	}
	return strconv.FormatUint(uint64(claims.UserID), 10) == event.UserID
}

// Handler returns the sockjs endpoint that bridges sessions to the hub
func Handler(h *Hub, sendBuffer int) http.Handler {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		log := logger.GetLogger()
		client := &Client{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer)}
		h.Register(client)
		prometheus.RealtimeConnectionsGauge.Inc()
		defer func() {
			h.Unregister(client)
			prometheus.RealtimeConnectionsGauge.Dec()
		}()

		log.Info("Realtime session connected", zap.String("client_id", client.ID))

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				log.Info("Realtime session disconnected", zap.String("client_id", client.ID))
				return
			}
			event, ok := ParseEvent([]byte(msg))
			if !ok {
				continue
			}
			switch event.Action {
			case ActionJoin:
				if !Authorize(event) {
					log.Warn("Rejected unauthorized room join",
						zap.String("client_id", client.ID),
						zap.String("user_id", event.UserID))
					_ = session.Close(4003, "join not authorized")
					return
				}
				h.Join(client, event.UserID)
				log.Info("Session joined user room",
					zap.String("client_id", client.ID),
					zap.String("user_id", event.UserID))
			case ActionSendNotification:
				// Same binding as join: a session may only relay into the
				// room its token was issued for.
				if !Authorize(event) {
					log.Warn("Rejected unauthorized notification relay",
						zap.String("client_id", client.ID),
						zap.String("user_id", event.UserID))
					continue
				}
				h.EmitToUser(event.UserID, Event{
					Event:   "receiveNotification",
					Message: event.Message,
				}.Encode())
			}
		}
	})
}
