package realtime_test

import (
	"log/slog"
	"sync"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
)

var testLog = logs.GetLoggerFromLevel(slog.LevelDebug)

// fakeHandle records every event pushed to it. A full handle drops them.
type fakeHandle struct {
	id     string
	mu     sync.Mutex
	events []realtime.Event
	full   bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{id: uuid.NewString()}
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Push(evt realtime.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.full {
		return errs.ErrDeliveryDropped
	}
	h.events = append(h.events, evt)
	return nil
}

func (h *fakeHandle) named(name string) []realtime.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []realtime.Event
	for _, evt := range h.events {
		if evt.Name == name {
			out = append(out, evt)
		}
	}
	return out
}

func (h *fakeHandle) deliveries() []realtime.DeliveryEvent {
	var out []realtime.DeliveryEvent
	for _, evt := range h.named(realtime.EventGetMessage) {
		out = append(out, evt.Data.(realtime.DeliveryEvent))
	}
	return out
}

func (h *fakeHandle) lastPresence() []realtime.PresenceEntry {
	events := h.named(realtime.EventGetUsers)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1].Data.([]realtime.PresenceEntry)
}
