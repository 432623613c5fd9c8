package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/samber/lo"
)

// Wire event names. Inbound names are sent by browsers, outbound names by
// the server.
const (
	EventAddUser     = "addUser"
	EventSendMessage = "sendMessage"
	EventDisconnect  = "disconnect"

	EventGetUsers   = "getUsers"
	EventGetMessage = "getMessage"
	EventError      = "error"
)

// NewConversation is the conversation reference a client sends before the
// pair has a persisted conversation.
const NewConversation = "new"

// Event is the envelope of every frame on the wire.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Profile is the public part of a user record.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// DeliveryEvent is pushed to the receiver and echoed to the sender when a
// chat message is relayed.
type DeliveryEvent struct {
	SenderID       string  `json:"senderId"`
	ReceiverID     string  `json:"receiverId"`
	ConversationID string  `json:"conversationId"`
	Text           string  `json:"message"`
	User           Profile `json:"user"`
}

// PresenceEntry is one line of a presence snapshot.
type PresenceEntry struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

// ErrorEvent reports a failed command back to the connection that sent it.
type ErrorEvent struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

type inbound struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type addUserData struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type sendMessageData struct {
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	Text           string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// DecodeCommand parses one inbound frame. addUser also accepts a bare JSON
// string as data, which is what browser clients have historically sent.
func DecodeCommand(raw []byte) (Command, error) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err)
	}

	switch in.Name {
	case EventAddUser:
		var data addUserData
		var bare string
		if err := json.Unmarshal(in.Data, &bare); err == nil {
			data.UserID = bare
		} else if err := json.Unmarshal(in.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidRequest, in.Name, err)
		}
		return RegisterCommand{UserID: strings.TrimSpace(data.UserID), Token: data.Token}, nil

	case EventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidRequest, in.Name, err)
		}
		return SendCommand{Request: SendRequest{
			SenderID:       data.SenderID,
			ReceiverID:     data.ReceiverID,
			Text:           data.Text,
			ConversationID: data.ConversationID,
		}}, nil

	case EventDisconnect:
		return DisconnectCommand{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown event %q", errs.ErrInvalidRequest, in.Name)
	}
}

func presenceEvent(snapshot []Entry) Event {
	entries := lo.Map(snapshot, func(e Entry, _ int) PresenceEntry {
		return PresenceEntry{UserID: e.UserID, SocketID: e.Handle.ID()}
	})
	return Event{Name: EventGetUsers, Data: entries}
}

func errorEvent(command string, err error) Event {
	return Event{Name: EventError, Data: ErrorEvent{Command: command, Message: err.Error()}}
}
