package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tyrowin/duochat/internal/errs"
)

// TokenVerifier checks that token was issued to userID.
type TokenVerifier func(token, userID string) error

// Engine is the Handler that wires inbound commands to the Registry and the
// Relay.
type Engine struct {
	registry *Registry
	relay    *Relay
	verify   TokenVerifier
	log      *slog.Logger
}

// NewEngine builds an engine. verify may be nil, in which case register
// commands are trusted.
func NewEngine(log *slog.Logger, registry *Registry, relay *Relay, verify TokenVerifier) *Engine {
	return &Engine{registry: registry, relay: relay, verify: verify, log: log}
}

// HandleFrame decodes and dispatches one raw inbound frame. A failing
// command is reported to the session's own connection as an error event.
func (e *Engine) HandleFrame(ctx context.Context, s *Session, raw []byte) error {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		e.reply(s, "", err)
		return err
	}
	if err := Dispatch(ctx, e, s, cmd); err != nil {
		e.reply(s, cmd.command(), err)
		return err
	}
	return nil
}

// Close ends the session as if it had sent a disconnect command. Transports
// call it when the connection drops.
func (e *Engine) Close(ctx context.Context, s *Session) {
	if s.Closed() {
		return
	}
	_ = e.HandleDisconnect(ctx, s)
}

func (e *Engine) HandleRegister(_ context.Context, s *Session, cmd RegisterCommand) error {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return fmt.Errorf("%w: userId is required", errs.ErrInvalidRequest)
	}

	state, bound := s.State()
	if state == Connected {
		if bound == userID {
			return nil
		}
		return fmt.Errorf("%w: connection already registered as %s", errs.ErrInvalidRequest, bound)
	}

	if e.verify != nil {
		if err := e.verify(cmd.Token, userID); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrInvalidCredentials, err)
		}
	}

	if e.registry.Add(userID, s.Handle()) {
		s.connect(userID)
		return nil
	}
	if h, ok := e.registry.Find(userID); ok && h.ID() == s.Handle().ID() {
		s.connect(userID)
		return nil
	}
	e.log.Info("User already online on another connection", "user_id", userID, "handle", s.Handle().ID())
	return nil
}

// HandleSend relays a message. A registered session always sends as its own
// user. A session that never registered may name any sender, unless tokens
// are verified, in which case it must register first.
func (e *Engine) HandleSend(ctx context.Context, s *Session, cmd SendCommand) error {
	req := cmd.Request
	state, bound := s.State()
	switch {
	case state == Connected && req.SenderID == "":
		req.SenderID = bound
	case state == Connected && req.SenderID != bound:
		return fmt.Errorf("%w: connection is registered as %s, not %s", errs.ErrInvalidRequest, bound, req.SenderID)
	case state != Connected && e.verify != nil:
		return fmt.Errorf("%w: register before sending", errs.ErrInvalidCredentials)
	}

	out, err := e.relay.Relay(ctx, req)
	if err != nil {
		e.log.Warn("Relay failed", "user_id", req.SenderID, "handle", s.Handle().ID(), "error", err)
		return err
	}
	e.log.Debug("Message relayed",
		"user_id", req.SenderID,
		"receiver_id", req.ReceiverID,
		"conversation_id", req.ConversationID,
		"delivered", out.Delivered,
		"dropped", out.Dropped,
	)
	return nil
}

func (e *Engine) HandleDisconnect(_ context.Context, s *Session) error {
	previous := s.close()
	removed := e.registry.Remove(s.Handle())
	e.log.Debug("Session closed", "handle", s.Handle().ID(), "state", previous.String(), "removed", removed)
	return nil
}

func (e *Engine) reply(s *Session, command string, err error) {
	if pushErr := s.Handle().Push(errorEvent(command, err)); pushErr != nil {
		e.log.Debug("Error reply dropped", "handle", s.Handle().ID(), "error", pushErr)
	}
}
