package server

import (
	"net/http"

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/chat"
	"github.com/Tyrowin/duochat/internal/realtime"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(s.log, w, r, err)
		return
	}
	profile, err := s.chat.Register(r.Context(), req)
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, profile)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(s.log, w, r, err)
		return
	}
	res, err := s.chat.Login(r.Context(), req)
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, res)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req chat.CreateConversationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(s.log, w, r, err)
		return
	}
	conv, err := s.chat.CreateConversation(r.Context(), req)
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, conversationResponse{ConversationID: conv.ID, Members: conv.Members})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	views, err := s.chat.Conversations(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, views)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req chat.PostMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(s.log, w, r, err)
		return
	}
	msg, err := s.chat.PostMessage(r.Context(), req)
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, messageResponse{MessageID: msg.ID, ConversationID: msg.ConversationID})
}

// handleMessages lists a conversation. For the new-conversation sentinel the
// pair comes from the senderId and receiverId query parameters.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversationId")

	var (
		views []chat.MessageView
		err   error
	)
	if conversationID == realtime.NewConversation {
		q := r.URL.Query()
		views, err = s.chat.MessagesBetween(r.Context(), q.Get("senderId"), q.Get("receiverId"))
	} else {
		views, err = s.chat.Messages(r.Context(), conversationID)
	}
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, views)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.chat.OtherUsers(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(s.log, w, r, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, users)
}
