package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/errs"
)

// SendRequest asks the relay to deliver one chat message. ConversationID is
// either a persisted conversation id or NewConversation.
type SendRequest struct {
	SenderID       string `validate:"required,notblank"`
	ReceiverID     string `validate:"required,notblank"`
	Text           string `validate:"required"`
	ConversationID string
}

// Outcome counts what happened to the pushes of one relay call. A dropped
// push is a normal outcome, not an error.
type Outcome struct {
	Delivered int
	Dropped   int
}

// Relay turns a SendRequest into live deliveries. It never persists
// anything: storing the message is the caller's business and may succeed or
// fail independently of the live delivery.
type Relay struct {
	registry *Registry
	profiles ProfileFinder
	log      *slog.Logger
}

func NewRelay(log *slog.Logger, registry *Registry, profiles ProfileFinder) *Relay {
	return &Relay{registry: registry, profiles: profiles, log: log}
}

// Relay pushes the message to the receiver's connection and echoes it to the
// sender's, for whichever of the two is online. Both ends resolving to the
// same connection, as in a conversation with oneself, yields one push.
//
// An unknown sender fails with errs.ErrNotFound and a failing profile lookup
// with errs.ErrPersistenceUnavailable, both before anything is pushed.
func (r *Relay) Relay(ctx context.Context, req SendRequest) (Outcome, error) {
	if err := auth.Validate(req); err != nil {
		return Outcome{}, err
	}

	sender, senderOnline := r.registry.Find(req.SenderID)
	receiver, receiverOnline := r.registry.Find(req.ReceiverID)

	profile, err := r.profiles.FindProfile(ctx, req.SenderID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Outcome{}, fmt.Errorf("sender %s: %w", req.SenderID, errs.ErrNotFound)
		}
		if errors.Is(err, errs.ErrPersistenceUnavailable) {
			return Outcome{}, fmt.Errorf("sender %s: %w", req.SenderID, err)
		}
		return Outcome{}, fmt.Errorf("sender %s: %w: %v", req.SenderID, errs.ErrPersistenceUnavailable, err)
	}

	evt := Event{Name: EventGetMessage, Data: DeliveryEvent{
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		ConversationID: req.ConversationID,
		Text:           req.Text,
		User:           profile,
	}}

	var targets []Handle
	if receiverOnline {
		targets = append(targets, receiver)
	}
	if senderOnline && (!receiverOnline || sender.ID() != receiver.ID()) {
		targets = append(targets, sender)
	}

	var out Outcome
	for _, h := range targets {
		if err := h.Push(evt); err != nil {
			out.Dropped++
			r.log.Debug("Delivery dropped", "handle", h.ID(), "error", err)
			continue
		}
		out.Delivered++
	}
	if !receiverOnline {
		r.log.Debug("Receiver offline", "user_id", req.ReceiverID)
	}
	return out, nil
}
