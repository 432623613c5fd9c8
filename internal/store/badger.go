package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// Key layout:
//
//	user:{id}                              -> User document
//	idx:email:{email}                      -> user id
//	conv:{id}                              -> Conversation document
//	idx:member:{userId}:{convId}           -> empty
//	idx:pair:{pair key}                    -> conversation id
//	msg:{convId}:{sequence, 19 digits}:{id} -> Message document
//
// The zero padded sequence keeps a conversation's messages in insertion
// order under a plain prefix scan, even when two of them share a timestamp.
const (
	userPrefix  = "user:"
	emailIndex  = "idx:email:"
	convPrefix  = "conv:"
	memberIndex = "idx:member:"
	pairIndex   = "idx:pair:"
	msgPrefix   = "msg:"
	padSequence = "%019d"
	msgSequence = "seq:msg"

	conflictRetries = 3
)

// BadgerStore is the embedded Gateway backend.
type BadgerStore struct {
	db     *badger.DB
	log    *slog.Logger
	msgSeq *badger.Sequence
}

// OpenBadger opens (or creates) the database stored under path.
func OpenBadger(path string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	s, err := NewBadgerStore(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenBadgerReadOnly opens path for inspection alongside a running server.
// The returned store refuses to create messages.
func OpenBadgerReadOnly(path string, log *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db, log: log}, nil
}

// NewBadgerStore wraps an already opened database. Closing the store closes
// the database.
func NewBadgerStore(db *badger.DB, log *slog.Logger) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(msgSequence), 128)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &BadgerStore{db: db, log: log, msgSeq: seq}, nil
}

func (s *BadgerStore) Close() error {
	if s.msgSeq != nil {
		if err := s.msgSeq.Release(); err != nil {
			s.log.Warn("Releasing message sequence failed", "error", err)
		}
	}
	return s.db.Close()
}

func (s *BadgerStore) CreateUser(_ context.Context, fullName, email, passwordHash string) (User, error) {
	user := User{
		ID:           newID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}
	data, err := bson.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		idx := []byte(emailIndex + email)
		if _, err := txn.Get(idx); err == nil {
			return errs.ErrUserAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(idx, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+user.ID), data)
	})
	if err != nil {
		return User{}, translate("create user", err)
	}
	s.log.Debug("User created", "user_id", user.ID)
	return user, nil
}

func (s *BadgerStore) FindUserByID(_ context.Context, id string) (User, error) {
	var user User
	err := s.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, userPrefix+id, &user)
	})
	if err != nil {
		return User{}, translate("find user", err)
	}
	return user, nil
}

func (s *BadgerStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	var user User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emailIndex + email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getDoc(txn, userPrefix+string(id), &user)
	})
	if err != nil {
		return User{}, translate("find user by email", err)
	}
	return user, nil
}

func (s *BadgerStore) UpdateUserToken(_ context.Context, id, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var user User
		if err := getDoc(txn, userPrefix+id, &user); err != nil {
			return err
		}
		user.Token = token
		return setDoc(txn, userPrefix+id, user)
	})
	return translate("update user token", err)
}

func (s *BadgerStore) FindOtherUsers(_ context.Context, excludeID string) ([]User, error) {
	users := []User{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanDocs(txn, userPrefix, func(data []byte) error {
			var user User
			if err := bson.Unmarshal(data, &user); err != nil {
				return err
			}
			if user.ID != excludeID {
				users = append(users, user)
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate("find other users", err)
	}
	return users, nil
}

func (s *BadgerStore) CreateConversation(_ context.Context, memberA, memberB string) (Conversation, error) {
	pair := PairKey(memberA, memberB)
	var (
		conv    Conversation
		created bool
	)
	err := s.update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pairIndex + pair))
		if err == nil {
			created = false
			id, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			return getDoc(txn, convPrefix+string(id), &conv)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		created = true
		conv = Conversation{
			ID:        newID(),
			Members:   []string{memberA, memberB},
			Pair:      pair,
			CreatedAt: now(),
		}
		if err := setDoc(txn, convPrefix+conv.ID, conv); err != nil {
			return err
		}
		if err := txn.Set([]byte(pairIndex+pair), []byte(conv.ID)); err != nil {
			return err
		}
		for _, member := range conv.Members {
			if err := txn.Set([]byte(memberKey(member, conv.ID)), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Conversation{}, translate("create conversation", err)
	}
	if created {
		s.log.Debug("Conversation created", "conversation_id", conv.ID)
	}
	return conv, nil
}

func (s *BadgerStore) FindConversation(_ context.Context, id string) (Conversation, error) {
	var conv Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, convPrefix+id, &conv)
	})
	if err != nil {
		return Conversation{}, translate("find conversation", err)
	}
	return conv, nil
}

func (s *BadgerStore) FindConversationBetween(_ context.Context, memberA, memberB string) (Conversation, error) {
	var conv Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pairIndex + PairKey(memberA, memberB)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getDoc(txn, convPrefix+string(id), &conv)
	})
	if err != nil {
		return Conversation{}, translate("find conversation between", err)
	}
	return conv, nil
}

func (s *BadgerStore) FindConversationsForUser(_ context.Context, userID string) ([]Conversation, error) {
	convs := []Conversation{}
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := memberIndex + userID + ":"
		var ids []string
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		it.Close()

		for _, id := range ids {
			var conv Conversation
			if err := getDoc(txn, convPrefix+id, &conv); err != nil {
				return err
			}
			convs = append(convs, conv)
		}
		return nil
	})
	if err != nil {
		return nil, translate("find conversations", err)
	}
	return convs, nil
}

// AllConversations lists every conversation, in key order.
func (s *BadgerStore) AllConversations(_ context.Context) ([]Conversation, error) {
	convs := []Conversation{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanDocs(txn, convPrefix, func(data []byte) error {
			var conv Conversation
			if err := bson.Unmarshal(data, &conv); err != nil {
				return err
			}
			convs = append(convs, conv)
			return nil
		})
	})
	if err != nil {
		return nil, translate("all conversations", err)
	}
	return convs, nil
}

func (s *BadgerStore) CreateMessage(_ context.Context, conversationID, senderID, text string) (Message, error) {
	msg := Message{
		ID:             newID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now(),
	}
	if s.msgSeq == nil {
		return Message{}, unavailable("create message", errors.New("store opened read-only"))
	}
	seq, err := s.msgSeq.Next()
	if err != nil {
		return Message{}, unavailable("create message", err)
	}
	msg.Seq = int64(seq)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(convPrefix + conversationID)); err != nil {
			return err
		}
		return setDoc(txn, messageKey(msg), msg)
	})
	if err != nil {
		return Message{}, translate("create message", err)
	}
	return msg, nil
}

func (s *BadgerStore) FindMessagesForConversation(_ context.Context, conversationID string) ([]Message, error) {
	msgs := []Message{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanDocs(txn, msgPrefix+conversationID+":", func(data []byte) error {
			var msg Message
			if err := bson.Unmarshal(data, &msg); err != nil {
				return err
			}
			msgs = append(msgs, msg)
			return nil
		})
	})
	if err != nil {
		return nil, translate("find messages", err)
	}
	return msgs, nil
}

func memberKey(userID, convID string) string {
	return memberIndex + userID + ":" + convID
}

func messageKey(msg Message) string {
	return fmt.Sprintf("%s%s:"+padSequence+":%s", msgPrefix, msg.ConversationID, msg.Seq, msg.ID)
}

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction committed one of the keys fn read.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range conflictRetries {
		if err = s.db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Transaction conflict, retrying")
	}
	return err
}

func getDoc(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return bson.Unmarshal(val, out)
	})
}

func setDoc(txn *badger.Txn, key string, doc any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func scanDocs(txn *badger.Txn, prefix string, fn func(data []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// translate maps badger failures onto the shared taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	case errors.Is(err, errs.ErrUserAlreadyExists):
		return err
	default:
		return unavailable(op, err)
	}
}
