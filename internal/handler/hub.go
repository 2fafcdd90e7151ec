package handler

import (
	"strconv"

	"smartserve/internal/realtime"
)

// Handlers push realtime events through a single process-wide hub, wired in
// at startup. A nil hub (unit tests, degraded boot) silently skips emission;
// the durable notification store remains the delivery path of record.
var hub *realtime.Hub

// UseHub installs the realtime hub used for push delivery
func UseHub(h *realtime.Hub) {
	hub = h
}

func emitToUser(userID uint, event realtime.Event) {
	if hub == nil {
		return
	}
	hub.EmitToUser(strconv.FormatUint(uint64(userID), 10), event.Encode())
}
