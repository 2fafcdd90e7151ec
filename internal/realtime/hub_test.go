package realtime

import (
	"os"
	"strings"
	"testing"

	"smartserve/pkg/config"
	"smartserve/pkg/jwtutil"
	"smartserve/prometheus"
)

func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

func newClient() *Client {
	return &Client{ID: "client", Send: make(chan []byte, 4)}
}

func TestEmitToJoinedRoom(t *testing.T) {
	h := New()
	client := newClient()
	h.Register(client)
	h.Join(client, "7")

	h.EmitToUser("7", []byte("hello"))

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected payload: %s", msg)
		}
	default:
		t.Fatal("expected a delivered message")
	}
}

func TestEmitToOtherRoomNotDelivered(t *testing.T) {
	h := New()
	client := newClient()
	h.Register(client)
	h.Join(client, "7")

	h.EmitToUser("8", []byte("hello"))

	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected delivery: %s", msg)
	default:
	}
}

func TestJoinIsIdempotentAndMultiRoom(t *testing.T) {
	h := New()
	client := newClient()
	h.Register(client)
	h.Join(client, "7")
	h.Join(client, "7")
	h.Join(client, "8")

	if got := h.RoomSize("7"); got != 1 {
		t.Fatalf("room 7 size = %d, want 1", got)
	}

	h.EmitToUser("7", []byte("a"))
	h.EmitToUser("8", []byte("b"))
	if len(client.Send) != 2 {
		t.Fatalf("expected 2 buffered messages, got %d", len(client.Send))
	}
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	h := New()
	client := &Client{ID: "slow", Send: make(chan []byte, 1)}
	h.Register(client)
	h.Join(client, "7")

	h.EmitToUser("7", []byte("first"))
	h.EmitToUser("7", []byte("second")) // buffer full, must not block

	if len(client.Send) != 1 {
		t.Fatalf("expected 1 buffered message, got %d", len(client.Send))
	}
	if msg := <-client.Send; string(msg) != "first" {
		t.Fatalf("unexpected surviving message: %s", msg)
	}
}

func TestUnregisterLeavesAllRoomsAndClosesSend(t *testing.T) {
	h := New()
	client := newClient()
	h.Register(client)
	h.Join(client, "7")
	h.Join(client, "8")

	h.Unregister(client)

	if got := h.RoomSize("7"); got != 0 {
		t.Fatalf("room 7 size = %d after unregister, want 0", got)
	}
	if got := h.RoomSize("8"); got != 0 {
		t.Fatalf("room 8 size = %d after unregister, want 0", got)
	}
	if _, open := <-client.Send; open {
		t.Fatal("expected send channel to be closed")
	}

	// A second unregister must be a no-op, not a double close
	h.Unregister(client)
}

func TestLeaveSingleRoom(t *testing.T) {
	h := New()
	client := newClient()
	h.Register(client)
	h.Join(client, "7")
	h.Join(client, "8")

	h.Leave(client, "7")

	if got := h.RoomSize("7"); got != 0 {
		t.Fatalf("room 7 size = %d after leave, want 0", got)
	}
	if got := h.RoomSize("8"); got != 1 {
		t.Fatalf("room 8 size = %d, want 1", got)
	}
}

func TestParseEvent(t *testing.T) {
	event, ok := ParseEvent([]byte(`{"action":"join","user_id":"7","token":"abc"}`))
	if !ok {
		t.Fatal("expected join event to parse")
	}
	if event.Action != ActionJoin || event.UserID != "7" || event.Token != "abc" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if _, ok := ParseEvent([]byte(`{"action":"subscribe"}`)); ok {
		t.Fatal("unknown action must be rejected")
	}
	if _, ok := ParseEvent([]byte(`not json`)); ok {
		t.Fatal("invalid JSON must be rejected")
	}
}

func TestAuthorize(t *testing.T) {
	token, err := jwtutil.GenerateToken("staff@example.com", 7)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if !Authorize(ClientEvent{Action: ActionJoin, UserID: "7", Token: token}) {
		t.Fatal("expected matching token to authorize")
	}
	if Authorize(ClientEvent{Action: ActionJoin, UserID: "8", Token: token}) {
		t.Fatal("token for another user must not authorize")
	}
	if Authorize(ClientEvent{Action: ActionJoin, UserID: "7", Token: "garbage"}) {
		t.Fatal("invalid token must not authorize")
	}
}

func TestRelayRequiresOwnRoomToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("staff@example.com", 7)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	event := ClientEvent{Action: ActionSendNotification, UserID: "8", Token: token, Message: "hi"}
	if Authorize(event) {
		t.Fatal("relay into another user's room must not authorize")
	}
	event.UserID = "7"
	if !Authorize(event) {
		t.Fatal("relay into the token holder's own room must authorize")
	}
}

func TestEventEncode(t *testing.T) {
	data := Event{Event: "receiveNotification", Message: "hi"}.Encode()
	if data == nil {
		t.Fatal("expected encoded event")
	}
	if !strings.Contains(string(data), `"event":"receiveNotification"`) {
		t.Fatalf("unexpected encoding: %s", data)
	}
}
