package realtime

import (
	"errors"
	"log/slog"

	"github.com/Tyrowin/duochat/internal/errs"
)

// Broadcaster pushes the registry snapshot to every connection of its
// audience each time the registry changes. Delivery is best effort: a
// connection that cannot take the event is skipped.
type Broadcaster struct {
	audience Audience
	log      *slog.Logger
}

func NewBroadcaster(log *slog.Logger, audience Audience) *Broadcaster {
	return &Broadcaster{audience: audience, log: log}
}

// PresenceChanged implements PresenceListener.
func (b *Broadcaster) PresenceChanged(snapshot []Entry) {
	evt := presenceEvent(snapshot)
	recipients := b.audience.Handles()

	var delivered int
	for _, h := range recipients {
		if err := h.Push(evt); err != nil {
			if errors.Is(err, errs.ErrDeliveryDropped) {
				b.log.Debug("Presence update dropped", "handle", h.ID())
			} else {
				b.log.Warn("Presence update failed", "handle", h.ID(), "error", err)
			}
			continue
		}
		delivered++
	}
	b.log.Debug("Presence broadcast", "online", len(snapshot), "recipients", len(recipients), "delivered", delivered)
}
