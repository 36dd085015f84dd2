package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hand-sword-fx/internal/cue"
	"hand-sword-fx/internal/swarm"
)

// client is a connected renderer. Frames go through a one-slot mailbox so a
// slow client only ever sees the newest frame; cues are queued.
type client struct {
	id    uuid.UUID
	conn  *websocket.Conn
	frame atomic.Pointer[[]byte]
	wake  chan struct{}
	cues  chan []byte
}

// Hub fans frames and cues out to renderer clients. It is an engine sink
// and a cue player.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	n       atomic.Int64

	dropped atomic.Uint64
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log, clients: make(map[*client]struct{})}
}

// Clients is the number of connected renderers.
func (h *Hub) Clients() int { return int(h.n.Load()) }

// Consume publishes f to every client, replacing any frame not yet sent.
func (h *Hub) Consume(f *swarm.Frame) {
	if h.n.Load() == 0 {
		return
	}
	data, err := encodeFrame(f)
	if err != nil {
		h.log.Error("encode frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.frame.Swap(&data) != nil {
			h.dropped.Add(1)
		}
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// Play broadcasts a cue event. Clients with a full cue queue miss it.
func (h *Hub) Play(_ context.Context, c cue.Cue) error {
	if h.n.Load() == 0 {
		return nil
	}
	data, err := encodeCue(c)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.cues <- data:
		default:
			h.log.Debug("client cue queue full", zap.String("client", cl.id.String()))
		}
	}
	return nil
}

// ServeWS upgrades the request and streams until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn("ws accept", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		wake: make(chan struct{}, 1),
		cues: make(chan []byte, 16),
	}
	if !h.register(c) {
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer h.unregister(c)

	// renderers never send; CloseRead handles control frames and cancels
	// ctx when the peer closes
	ctx := conn.CloseRead(r.Context())
	err = c.writePump(ctx)
	if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
		h.log.Debug("ws write failed", zap.String("client", c.id.String()), zap.Error(err))
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (c *client) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.cues:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return err
			}
		case <-c.wake:
			p := c.frame.Swap(nil)
			if p == nil {
				continue
			}
			if err := c.conn.Write(ctx, websocket.MessageText, *p); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.n.Store(int64(len(h.clients)))
	h.log.Info("renderer connected", zap.String("client", c.id.String()), zap.Int("clients", len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.n.Store(int64(len(h.clients)))
		h.log.Info("renderer disconnected", zap.String("client", c.id.String()), zap.Int("clients", len(h.clients)))
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "shutting down")
	}
}
