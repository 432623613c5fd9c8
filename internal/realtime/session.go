package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/Tyrowin/duochat/internal/errs"
)

// State of a connection as seen by the core.
type State int

const (
	// Disconnected: the connection is not registered for any user.
	Disconnected State = iota
	// Connected: the connection is the registry entry of its user.
	Connected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session follows one connection through
// Disconnected -> Connected -> Disconnected. Once it has left Connected, or
// has been closed, it accepts no further commands; a reconnect is a new
// Session on a new Handle.
type Session struct {
	mu     sync.Mutex
	handle Handle
	state  State
	userID string
	closed bool
}

func NewSession(h Handle) *Session {
	return &Session{handle: h}
}

func (s *Session) Handle() Handle {
	return s.handle
}

// State returns the current state and the user the session is bound to.
func (s *Session) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.userID
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) connect(userID string) {
	s.mu.Lock()
	s.state = Connected
	s.userID = userID
	s.mu.Unlock()
}

// close marks the session as finished and returns the state it left.
func (s *Session) close() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.state
	s.state = Disconnected
	s.closed = true
	return previous
}

// Command is one inbound real-time command.
type Command interface {
	command() string
}

// RegisterCommand binds the connection to a user. Token is only checked when
// the engine has a TokenVerifier.
type RegisterCommand struct {
	UserID string
	Token  string
}

// SendCommand relays a chat message.
type SendCommand struct {
	Request SendRequest
}

// DisconnectCommand ends the session. Transports also dispatch it when the
// underlying connection goes away.
type DisconnectCommand struct{}

func (RegisterCommand) command() string   { return EventAddUser }
func (SendCommand) command() string       { return EventSendMessage }
func (DisconnectCommand) command() string { return EventDisconnect }

// Handler has one method per inbound command kind.
type Handler interface {
	HandleRegister(ctx context.Context, s *Session, cmd RegisterCommand) error
	HandleSend(ctx context.Context, s *Session, cmd SendCommand) error
	HandleDisconnect(ctx context.Context, s *Session) error
}

// Dispatch routes cmd to the matching Handler method. Commands reaching a
// closed session are refused with errs.ErrSessionClosed.
func Dispatch(ctx context.Context, h Handler, s *Session, cmd Command) error {
	if s.Closed() {
		return errs.ErrSessionClosed
	}
	switch c := cmd.(type) {
	case RegisterCommand:
		return h.HandleRegister(ctx, s, c)
	case SendCommand:
		return h.HandleSend(ctx, s, c)
	case DisconnectCommand:
		return h.HandleDisconnect(ctx, s)
	default:
		return fmt.Errorf("%w: unsupported command %T", errs.ErrInvalidRequest, cmd)
	}
}
