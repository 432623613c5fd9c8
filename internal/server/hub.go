package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/samber/lo"
)

// Hub owns the live WebSocket clients. It starts their pumps, closes their
// sessions when they go away and is the audience of presence broadcasts.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	engine     *realtime.Engine
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        *slog.Logger
}

func NewHub(log *slog.Logger, engine *realtime.Engine) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		engine:     engine,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log,
	}
}

// Handles implements realtime.Audience.
func (h *Hub) Handles() []realtime.Handle {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return lo.MapToSlice(h.clients, func(c *Client, _ struct{}) realtime.Handle {
		return c
	})
}

// Len returns the number of live clients.
func (h *Hub) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Register hands a freshly upgraded client to the hub. It returns false once
// the hub is shutting down.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.drop(c)
	}
}

// Run is the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.Info("Client registered", "remote_addr", c.addr, "handle", c.id, "clients", count)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				c.writePump()
			}()
			go func() {
				defer h.wg.Done()
				c.readPump()
			}()

		case c := <-h.unregister:
			h.drop(c)
		}
	}
}

// drop forgets c, closes its session (which updates presence) and stops its
// write pump. Dropping twice is a no-op.
func (h *Hub) drop(c *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mutex.Unlock()

	h.engine.Close(context.Background(), c.session)
	c.closeSend()
	h.log.Info("Client unregistered", "remote_addr", c.addr, "handle", c.id, "clients", count)
}

func (h *Hub) shutdownClients() {
	h.mutex.RLock()
	clients := lo.Keys(h.clients)
	h.mutex.RUnlock()

	for _, c := range clients {
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			h.log.Warn("Error closing client connection", "remote_addr", c.addr, "error", err)
		}
	}
	h.log.Info("Closed client connections", "clients", len(clients))
}

// Shutdown stops the event loop, closes every connection and waits for the
// pumps to return, at most timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("Hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some pumps may still be running")
		return context.DeadlineExceeded
	}
}
