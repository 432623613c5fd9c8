package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one WebSocket connection. It is the realtime.Handle of its
// session: events pushed to it are encoded and queued for the write pump.
type Client struct {
	id             string
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	session        *realtime.Session
	addr           string
	maxMessageSize int64
	limiter        *rateLimiter
	rateLimit      RateLimitConfig
	log            *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewClient binds conn to hub. The send buffer and the inbound limits come
// from cfg.
func NewClient(log *slog.Logger, conn *websocket.Conn, hub *Hub, addr string, cfg Config) *Client {
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	c := &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, cfg.SendBufferSize),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		limiter:        newRateLimiter(cfg.RateLimit()),
		rateLimit:      cfg.RateLimit(),
		log:            log.With("remote_addr", addr),
	}
	c.session = realtime.NewSession(c)
	return c
}

func (c *Client) ID() string { return c.id }

// Push implements realtime.Handle. It never blocks: a full or closed queue
// drops the event.
func (c *Client) Push(evt realtime.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errs.ErrDeliveryDropped
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errs.ErrDeliveryDropped
	}
}

// closeSend stops the write pump once the queue is drained.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// logReadError reports why the read loop stopped.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Frame exceeded maximum size", "limit", c.maxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug("Client disconnected", "error", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Debug("Client connection closed", "error", err)
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
		c.log.Error("Unexpected WebSocket error", "error", err)
	default:
		c.log.Debug("WebSocket read stopped", "error", err)
	}
}

func (c *Client) allowFrame() bool {
	if c.limiter.allow() {
		return true
	}
	c.log.Warn("Rate limit exceeded, discarding frame",
		"burst", c.rateLimit.Burst, "interval", c.rateLimit.RefillInterval)
	return false
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error closing connection in read pump", "error", err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.allowFrame() {
			continue
		}
		if err := c.hub.engine.HandleFrame(c.hub.ctx, c.session, raw); err != nil {
			c.log.Debug("Command failed", "error", err)
		}
		if c.session.Closed() {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error closing connection in write pump", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeFrame(message, ok) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrame writes one queued event, or the close frame once the queue is
// closed. It returns false when the pump must stop.
func (c *Client) writeFrame(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline", "error", err)
		return false
	}
	if !ok {
		err := c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		if err != nil && !isExpectedCloseError(err) {
			c.log.Warn("Error writing close message", "error", err)
		}
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing message", "error", err)
		}
		return false
	}
	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline for ping", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing ping", "error", err)
		}
		return false
	}
	return true
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe")
}
