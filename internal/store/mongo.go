package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tyrowin/duochat/internal/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
	countersCollection      = "counters"

	messageCounter = "messages"
)

// MongoStore is the Gateway backend for a MongoDB deployment.
type MongoStore struct {
	client        *mongo.Client
	users         *mongo.Collection
	conversations *mongo.Collection
	messages      *mongo.Collection
	counters      *mongo.Collection
	log           *slog.Logger
}

// OpenMongo connects to uri, checks the deployment is reachable and ensures
// the indexes the store relies on.
func OpenMongo(ctx context.Context, uri, database string, log *slog.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStore(client.Database(database), log)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStore uses db as is. Closing the store disconnects db's client.
func NewMongoStore(db *mongo.Database, log *slog.Logger) *MongoStore {
	return &MongoStore{
		client:        db.Client(),
		users:         db.Collection(usersCollection),
		conversations: db.Collection(conversationsCollection),
		messages:      db.Collection(messagesCollection),
		counters:      db.Collection(countersCollection),
		log:           log,
	}
}

// EnsureIndexes creates the unique email and pair indexes and the lookup
// indexes for conversations and messages.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.conversations, mongo.IndexModel{
			Keys:    bson.D{{Key: "pair", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.conversations, mongo.IndexModel{
			Keys: bson.D{{Key: "members", Value: 1}},
		}},
		{s.messages, mongo.IndexModel{
			Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "seq", Value: 1}},
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) CreateUser(ctx context.Context, fullName, email, passwordHash string) (User, error) {
	user := User{
		ID:           newID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, errs.ErrUserAlreadyExists
		}
		return User{}, unavailable("create user", err)
	}
	s.log.Debug("User created", "user_id", user.ID)
	return user, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (User, error) {
	var user User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, translateMongo("find user", err)
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, translateMongo("find user by email", err)
}

func (s *MongoStore) UpdateUserToken(ctx context.Context, id, token string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"token": token}})
	if err != nil {
		return unavailable("update user token", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update user token: %w", errs.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) FindOtherUsers(ctx context.Context, excludeID string) ([]User, error) {
	users := []User{}
	if err := s.findAll(ctx, s.users, bson.M{"_id": bson.M{"$ne": excludeID}}, nil, &users); err != nil {
		return nil, unavailable("find other users", err)
	}
	return users, nil
}

// CreateConversation upserts on the unique pair index. When two callers
// race, the loser's upsert fails with a duplicate key and reads the winner's
// document.
func (s *MongoStore) CreateConversation(ctx context.Context, memberA, memberB string) (Conversation, error) {
	pair := PairKey(memberA, memberB)
	id := newID()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       id,
		"members":   []string{memberA, memberB},
		"createdAt": now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv Conversation
	err := s.conversations.FindOneAndUpdate(ctx, bson.M{"pair": pair}, update, opts).Decode(&conv)
	if mongo.IsDuplicateKeyError(err) {
		err = s.conversations.FindOne(ctx, bson.M{"pair": pair}).Decode(&conv)
	}
	if err != nil {
		return Conversation{}, translateMongo("create conversation", err)
	}
	if conv.ID == id {
		s.log.Debug("Conversation created", "conversation_id", conv.ID)
	}
	return conv, nil
}

func (s *MongoStore) FindConversation(ctx context.Context, id string) (Conversation, error) {
	var conv Conversation
	err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	return conv, translateMongo("find conversation", err)
}

func (s *MongoStore) FindConversationBetween(ctx context.Context, memberA, memberB string) (Conversation, error) {
	var conv Conversation
	err := s.conversations.FindOne(ctx, bson.M{"pair": PairKey(memberA, memberB)}).Decode(&conv)
	return conv, translateMongo("find conversation between", err)
}

func (s *MongoStore) FindConversationsForUser(ctx context.Context, userID string) ([]Conversation, error) {
	convs := []Conversation{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := s.findAll(ctx, s.conversations, bson.M{"members": userID}, opts, &convs); err != nil {
		return nil, unavailable("find conversations", err)
	}
	return convs, nil
}

func (s *MongoStore) CreateMessage(ctx context.Context, conversationID, senderID, text string) (Message, error) {
	if _, err := s.FindConversation(ctx, conversationID); err != nil {
		return Message{}, err
	}
	seq, err := s.nextSequence(ctx, messageCounter)
	if err != nil {
		return Message{}, unavailable("create message", err)
	}
	msg := Message{
		ID:             newID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Seq:            seq,
		CreatedAt:      now(),
	}
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return Message{}, unavailable("create message", err)
	}
	return msg, nil
}

func (s *MongoStore) FindMessagesForConversation(ctx context.Context, conversationID string) ([]Message, error) {
	msgs := []Message{}
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if err := s.findAll(ctx, s.messages, bson.M{"conversationId": conversationID}, opts, &msgs); err != nil {
		return nil, unavailable("find messages", err)
	}
	return msgs, nil
}

// nextSequence increments the named counter and returns its new value.
func (s *MongoStore) nextSequence(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	return counter.Value, err
}

func (s *MongoStore) findAll(ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, out any) error {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = coll.Find(ctx, filter, opts)
	} else {
		cur, err = coll.Find(ctx, filter)
	}
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func translateMongo(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	default:
		return unavailable(op, err)
	}
}
