package server

import (
	"log/slog"
	"time"

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/chat"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/Tyrowin/duochat/internal/store"
	"github.com/gorilla/websocket"
)

// Server wires the registry, relay and engine to the hub of live clients
// and to the chat service behind the REST API.
type Server struct {
	cfg      Config
	log      *slog.Logger
	hub      *Hub
	registry *realtime.Registry
	chat     *chat.Service
	upgrader websocket.Upgrader
}

func New(log *slog.Logger, cfg Config, gateway store.Gateway, tokens *auth.TokenIssuer) *Server {
	cfg = SanitizeConfig(cfg)
	svc := chat.NewService(log, gateway, tokens)

	registry := realtime.NewRegistry(log, nil)
	relay := realtime.NewRelay(log, registry, svc)
	var verify realtime.TokenVerifier
	if cfg.RequireWSToken {
		verify = svc.VerifySession
	}
	engine := realtime.NewEngine(log, registry, relay, verify)

	hub := NewHub(log, engine)
	registry.SetListener(realtime.NewBroadcaster(log, hub))

	origins := newOriginPolicy(log, cfg.Origins())
	return &Server{
		cfg:      cfg,
		log:      log,
		hub:      hub,
		registry: registry,
		chat:     svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
	}
}

// Start runs the hub. It must be called once before serving requests.
func (s *Server) Start() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections")
}

// Shutdown closes every live connection and waits for their pumps.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.hub.Shutdown(timeout)
}

// Online returns the number of users currently registered.
func (s *Server) Online() int {
	return s.registry.Len()
}
