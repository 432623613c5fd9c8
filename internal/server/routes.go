package server

import "net/http"

// Routes returns the mux serving the WebSocket endpoint, the test page and
// the REST API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /test", s.handleTestPage)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/conversation", s.handleCreateConversation)
	mux.HandleFunc("GET /api/conversations/{userId}", s.handleConversations)
	mux.HandleFunc("POST /api/message", s.handlePostMessage)
	mux.HandleFunc("GET /api/message/{conversationId}", s.handleMessages)
	mux.HandleFunc("GET /api/users/{userId}", s.handleUsers)
	return mux
}
