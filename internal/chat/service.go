// Package chat implements the request/response side of duochat: accounts,
// conversation and message listings, and message posting. It also resolves
// sender profiles for the real-time relay.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/Tyrowin/duochat/internal/store"
	"github.com/samber/lo"
)

// Contact is how another user appears in listings.
type Contact struct {
	ReceiverID string `json:"receiverId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
}

// ConversationView is one line of a user's conversation list.
type ConversationView struct {
	User           Contact `json:"user"`
	ConversationID string  `json:"conversationId"`
}

// MessageView is one message with its sender's profile.
type MessageView struct {
	User    realtime.Profile `json:"user"`
	Message string           `json:"message"`
}

// UserView wraps a contact the way user listings are shaped on the wire.
type UserView struct {
	User Contact `json:"user"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User  realtime.Profile `json:"user"`
	Token string           `json:"token"`
}

// CreateConversationRequest opens a conversation between two users.
type CreateConversationRequest struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

// PostMessageRequest persists one message. ConversationID may be
// realtime.NewConversation, in which case ReceiverID is required and the
// pair's conversation is reused or created.
type PostMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	Message        string `json:"message" validate:"required"`
	ReceiverID     string `json:"receiverId"`
}

type Service struct {
	gateway store.Gateway
	tokens  *auth.TokenIssuer
	log     *slog.Logger
}

func NewService(log *slog.Logger, gateway store.Gateway, tokens *auth.TokenIssuer) *Service {
	return &Service{gateway: gateway, tokens: tokens, log: log}
}

// FindProfile implements realtime.ProfileFinder.
func (s *Service) FindProfile(ctx context.Context, userID string) (realtime.Profile, error) {
	user, err := s.gateway.FindUserByID(ctx, userID)
	if err != nil {
		return realtime.Profile{}, err
	}
	return toProfile(user), nil
}

// VerifySession implements realtime.TokenVerifier.
func (s *Service) VerifySession(token, userID string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return fmt.Errorf("token issued to %s", claims.UserID)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, req auth.RegisterRequest) (realtime.Profile, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalizeEmail(req.Email)
	if err := auth.Validate(req); err != nil {
		return realtime.Profile{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return realtime.Profile{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.gateway.CreateUser(ctx, req.FullName, req.Email, hash)
	if err != nil {
		return realtime.Profile{}, err
	}
	s.log.Info("User registered", "user_id", user.ID)
	return toProfile(user), nil
}

func (s *Service) Login(ctx context.Context, req auth.LoginRequest) (LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := auth.Validate(req); err != nil {
		return LoginResult{}, err
	}

	user, err := s.gateway.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, errs.ErrNotFound) {
		return LoginResult{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return LoginResult{}, errs.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", errs.ErrTokenGeneration, err)
	}
	if err := s.gateway.UpdateUserToken(ctx, user.ID, token); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: toProfile(user), Token: token}, nil
}

func (s *Service) CreateConversation(ctx context.Context, req CreateConversationRequest) (store.Conversation, error) {
	if err := auth.Validate(req); err != nil {
		return store.Conversation{}, err
	}
	return s.gateway.CreateConversation(ctx, req.SenderID, req.ReceiverID)
}

// Conversations lists the conversations of userID with the other member's
// contact details. Conversations whose other member no longer exists are
// left out.
func (s *Service) Conversations(ctx context.Context, userID string) ([]ConversationView, error) {
	convs, err := s.gateway.FindConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		other, err := s.gateway.FindUserByID(ctx, conv.OtherMember(userID))
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("Conversation member missing", "conversation_id", conv.ID, "user_id", conv.OtherMember(userID))
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, ConversationView{User: toContact(other), ConversationID: conv.ID})
	}
	return views, nil
}

// PostMessage persists a message, resolving the NewConversation sentinel to
// the pair's conversation. The gateway creates it atomically when missing.
func (s *Service) PostMessage(ctx context.Context, req PostMessageRequest) (store.Message, error) {
	if err := auth.Validate(req); err != nil {
		return store.Message{}, err
	}

	conversationID := req.ConversationID
	if conversationID == realtime.NewConversation {
		if req.ReceiverID == "" {
			return store.Message{}, fmt.Errorf("%w: receiverId is required for a new conversation", errs.ErrInvalidRequest)
		}
		conv, err := s.gateway.CreateConversation(ctx, req.SenderID, req.ReceiverID)
		if err != nil {
			return store.Message{}, err
		}
		conversationID = conv.ID
	}

	msg, err := s.gateway.CreateMessage(ctx, conversationID, req.SenderID, req.Message)
	if err != nil {
		return store.Message{}, err
	}
	s.log.Debug("Message stored", "conversation_id", conversationID, "user_id", req.SenderID)
	return msg, nil
}

// Messages lists a conversation's messages in order, each with its sender's
// profile.
func (s *Service) Messages(ctx context.Context, conversationID string) ([]MessageView, error) {
	if _, err := s.gateway.FindConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.gateway.FindMessagesForConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	profiles := map[string]realtime.Profile{}
	views := make([]MessageView, 0, len(msgs))
	for _, msg := range msgs {
		profile, ok := profiles[msg.SenderID]
		if !ok {
			profile, err = s.FindProfile(ctx, msg.SenderID)
			if err != nil {
				return nil, err
			}
			profiles[msg.SenderID] = profile
		}
		views = append(views, MessageView{User: profile, Message: msg.Text})
	}
	return views, nil
}

// MessagesBetween lists the messages of the conversation held by the pair,
// or nothing when they have not talked yet.
func (s *Service) MessagesBetween(ctx context.Context, senderID, receiverID string) ([]MessageView, error) {
	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("%w: senderId and receiverId are required", errs.ErrInvalidRequest)
	}
	conv, err := s.gateway.FindConversationBetween(ctx, senderID, receiverID)
	if errors.Is(err, errs.ErrNotFound) {
		return []MessageView{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Messages(ctx, conv.ID)
}

// OtherUsers lists every user except userID.
func (s *Service) OtherUsers(ctx context.Context, userID string) ([]UserView, error) {
	users, err := s.gateway.FindOtherUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u store.User, _ int) UserView {
		return UserView{User: toContact(u)}
	}), nil
}

func toProfile(u store.User) realtime.Profile {
	return realtime.Profile{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

func toContact(u store.User) Contact {
	return Contact{ReceiverID: u.ID, Email: u.Email, FullName: u.FullName}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
