package store

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	s, err := NewBadgerStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_CreateUser_And_Find(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	// When a user is created
	created, err := s.CreateUser(ctx, "Alice Liddell", "alice@example.com", "hash")
	req.NoError(err)
	req.NotEmpty(created.ID)

	// Then it can be found by id and by email
	byID, err := s.FindUserByID(ctx, created.ID)
	req.NoError(err)
	req.Equal(created, byID)

	byEmail, err := s.FindUserByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(created, byEmail)
}

func TestBadgerStore_CreateUser_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateUser(ctx, "Alice", "alice@example.com", "hash")
	req.NoError(err)

	_, err = s.CreateUser(ctx, "Alice Bis", "alice@example.com", "hash")
	req.ErrorIs(err, errs.ErrUserAlreadyExists)
}

func TestBadgerStore_Unknown_User(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	_, err := s.FindUserByID(context.Background(), "missing")
	req.ErrorIs(err, errs.ErrNotFound)

	_, err = s.FindUserByEmail(context.Background(), "missing@example.com")
	req.ErrorIs(err, errs.ErrNotFound)

	err = s.UpdateUserToken(context.Background(), "missing", "token")
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestBadgerStore_UpdateUserToken(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.CreateUser(ctx, "Alice", "alice@example.com", "hash")
	req.NoError(err)

	req.NoError(s.UpdateUserToken(ctx, user.ID, "signed"))

	found, err := s.FindUserByID(ctx, user.ID)
	req.NoError(err)
	req.Equal("signed", found.Token)
}

func TestBadgerStore_FindOtherUsers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)
	alice, err := s.CreateUser(ctx, "Alice", "alice@example.com", "hash")
	req.NoError(err)
	bob, err := s.CreateUser(ctx, "Bob", "bob@example.com", "hash")
	req.NoError(err)
	clara, err := s.CreateUser(ctx, "Clara", "clara@example.com", "hash")
	req.NoError(err)

	others, err := s.FindOtherUsers(ctx, alice.ID)
	req.NoError(err)
	req.ElementsMatch([]User{bob, clara}, others)
}

func TestBadgerStore_Conversations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	// Given two conversations involving alice
	ab, err := s.CreateConversation(ctx, "alice", "bob")
	req.NoError(err)
	ac, err := s.CreateConversation(ctx, "clara", "alice")
	req.NoError(err)

	// Then both are listed for alice, one for bob
	forAlice, err := s.FindConversationsForUser(ctx, "alice")
	req.NoError(err)
	req.ElementsMatch([]Conversation{ab, ac}, forAlice)

	forBob, err := s.FindConversationsForUser(ctx, "bob")
	req.NoError(err)
	req.Equal([]Conversation{ab}, forBob)

	// And the pair lookup ignores member order
	found, err := s.FindConversationBetween(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(ab, found)

	_, err = s.FindConversationBetween(ctx, "bob", "clara")
	req.ErrorIs(err, errs.ErrNotFound)

	// And a user alone has no conversation with themselves
	_, err = s.FindConversationBetween(ctx, "alice", "alice")
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestBadgerStore_Messages_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)
	conv, err := s.CreateConversation(ctx, "alice", "bob")
	req.NoError(err)
	other, err := s.CreateConversation(ctx, "alice", "clara")
	req.NoError(err)

	texts := []string{"one", "two", "three", "four", "five"}
	for i, text := range texts {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		_, err := s.CreateMessage(ctx, conv.ID, sender, text)
		req.NoError(err)
	}
	_, err = s.CreateMessage(ctx, other.ID, "clara", "elsewhere")
	req.NoError(err)

	msgs, err := s.FindMessagesForConversation(ctx, conv.ID)
	req.NoError(err)
	req.Len(msgs, len(texts))
	for i, msg := range msgs {
		req.Equal(texts[i], msg.Text)
		req.Equal(conv.ID, msg.ConversationID)
	}
}

func TestBadgerStore_CreateMessage_Unknown_Conversation(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	_, err := s.CreateMessage(context.Background(), "missing", "alice", "hi")
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestBadgerStore_Empty_Listings_Are_Not_Nil(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	users, err := s.FindOtherUsers(ctx, "nobody")
	req.NoError(err)
	req.NotNil(users)
	req.Empty(users)

	msgs, err := s.FindMessagesForConversation(ctx, "nothing")
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)
}

func TestBadgerStore_CreateConversation_Reuses_The_Pair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	// Given a conversation between alice and bob
	first, err := s.CreateConversation(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(PairKey("alice", "bob"), first.Pair)

	// When it is created again, in either member order
	again, err := s.CreateConversation(ctx, "bob", "alice")
	req.NoError(err)

	// Then the same conversation comes back
	req.Equal(first, again)
	convs, err := s.FindConversationsForUser(ctx, "bob")
	req.NoError(err)
	req.Len(convs, 1)
}

func TestBadgerStore_CreateConversation_Concurrent_Creates_One(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	const callers = 16
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		ids   = make([]string, callers)
		errsC = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := s.CreateConversation(ctx, a, b)
			ids[i], errsC[i] = conv.ID, err
		}()
	}
	close(start)
	wg.Wait()

	for i := range callers {
		req.NoError(errsC[i])
		req.Equal(ids[0], ids[i])
	}
	convs, err := s.AllConversations(ctx)
	req.NoError(err)
	req.Len(convs, 1)
}
