//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

// Package store is the persistence gateway for users, conversations and
// messages. Two document-store backends implement Gateway: an embedded
// Badger database and a MongoDB deployment. Both persist the same
// BSON-tagged records.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"fullName"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Token        string    `bson:"token,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Conversation groups the messages exchanged by exactly two users. A pair
// of users holds at most one conversation.
type Conversation struct {
	ID        string    `bson:"_id"`
	Members   []string  `bson:"members"`
	Pair      string    `bson:"pair"`
	CreatedAt time.Time `bson:"createdAt"`
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// HasMember reports whether userID takes part in the conversation.
func (c Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsBetween reports whether the conversation's members are exactly the
// unordered pair {a, b}.
func (c Conversation) IsBetween(a, b string) bool {
	if len(c.Members) != 2 {
		return false
	}
	return (c.Members[0] == a && c.Members[1] == b) || (c.Members[0] == b && c.Members[1] == a)
}

// OtherMember returns the member that is not userID. For a conversation a
// user holds with themselves it returns userID.
func (c Conversation) OtherMember(userID string) string {
	for _, m := range c.Members {
		if m != userID {
			return m
		}
	}
	return userID
}

// Message is a single persisted chat line. Seq grows with every insert and
// orders the messages of a conversation.
type Message struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversationId"`
	SenderID       string    `bson:"senderId"`
	Text           string    `bson:"message"`
	Seq            int64     `bson:"seq"`
	CreatedAt      time.Time `bson:"createdAt"`
}

// Gateway is implemented by every storage backend.
type Gateway interface {
	CreateUser(ctx context.Context, fullName, email, passwordHash string) (User, error)
	FindUserByID(ctx context.Context, id string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUserToken(ctx context.Context, id, token string) error
	FindOtherUsers(ctx context.Context, excludeID string) ([]User, error)

	// CreateConversation returns the pair's conversation, creating it when
	// the pair has none. Concurrent calls for one pair agree on the result.
	CreateConversation(ctx context.Context, memberA, memberB string) (Conversation, error)
	FindConversation(ctx context.Context, id string) (Conversation, error)
	FindConversationBetween(ctx context.Context, memberA, memberB string) (Conversation, error)
	FindConversationsForUser(ctx context.Context, userID string) ([]Conversation, error)

	CreateMessage(ctx context.Context, conversationID, senderID, text string) (Message, error)
	FindMessagesForConversation(ctx context.Context, conversationID string) ([]Message, error)

	Close() error
}

// BSON datetimes carry millisecond precision, records are stamped
// accordingly so that what is read back equals what was written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newID() string {
	return uuid.NewString()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", errs.ErrPersistenceUnavailable, op, err)
}
