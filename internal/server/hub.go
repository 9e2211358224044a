package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubegate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBuffer     = 256
)

// Message types on the renderer socket.
const (
	TypeMoveApplied   = "move_applied"
	TypeFace          = "face"
	TypeReset         = "reset"
	TypeLink          = "link"
	TypeError         = "error"
	TypeMove          = "move"
	TypeAnimationDone = "animation_done"
)

// Envelope is the frame used in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ackRequest struct {
	ID string `json:"id"`
}

// Hub fans engine events out to connected renderers and is the engine's
// Animator: a move completes when any renderer acknowledges it, or at once
// when no renderer is connected.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	waiters map[string]chan struct{}

	// handles client "move" frames; set by the server
	onMove func(moveRequest) error
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. An empty allowedOrigin accepts any origin.
func NewHub(logger *zap.Logger, allowedOrigin string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		clients: make(map[*client]struct{}),
		waiters: make(map[string]chan struct{}),
	}
}

// Attach subscribes the hub to the engine's event streams.
func (h *Hub) Attach(e *cubegate.Engine) {
	e.OnMoveApplied(h.handleApplied)
	e.OnFaceChange(func(ev cubegate.FaceEvent) {
		h.Broadcast(TypeFace, ev)
	})
}

// Clients returns the number of connected renderers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleApplied registers the ack waiter before the frame goes out, so a
// fast renderer cannot acknowledge a move the hub does not know yet.
func (h *Hub) handleApplied(applied cubegate.MoveApplied) {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	h.waiters[applied.ID] = make(chan struct{})
	h.mu.Unlock()

	h.Broadcast(TypeMoveApplied, applied)
}

// Animate blocks until a renderer acknowledges the move.
func (h *Hub) Animate(ctx context.Context, applied cubegate.MoveApplied) error {
	h.mu.Lock()
	ch, ok := h.waiters[applied.ID]
	h.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.waiters, applied.ID)
		h.mu.Unlock()
		return ctx.Err()
	}
}

// Ack completes the animation wait for a move. Unknown or repeated IDs are
// ignored.
func (h *Hub) Ack(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.waiters[id]
	if !ok {
		return false
	}
	close(ch)
	delete(h.waiters, id)
	return true
}

// Broadcast sends a typed frame to every renderer. Renderers whose buffer
// is full are dropped.
func (h *Hub) Broadcast(msgType string, v any) {
	frame, err := encode(msgType, v)
	if err != nil {
		h.logger.Error("encode frame", zap.String("type", msgType), zap.Error(err))
		return
	}

	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow renderer", zap.String("client", c.id))
		h.unregister(c)
	}
}

func encode(msgType string, v any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// ServeWS upgrades the request and runs the renderer connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("renderer connected", zap.String("client", c.id), zap.String("remote", conn.RemoteAddr().String()))

	go c.writePump()
	c.readPump()
}

// unregister removes a client. When the last renderer leaves, every pending
// animation is released.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	if len(h.clients) == 0 {
		for id, ch := range h.waiters {
			close(ch)
			delete(h.waiters, id)
		}
	}
	h.mu.Unlock()
	h.logger.Info("renderer disconnected", zap.String("client", c.id))
}

// Close disconnects every renderer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("renderer read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *client) handle(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.reply(TypeError, errMsg("malformed frame"))
		return
	}

	switch env.Type {
	case TypeAnimationDone:
		var ack ackRequest
		if err := json.Unmarshal(env.Data, &ack); err != nil || ack.ID == "" {
			c.reply(TypeError, errMsg("animation_done needs an id"))
			return
		}
		c.hub.Ack(ack.ID)
	case TypeMove:
		var req moveRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.reply(TypeError, errMsg("malformed move"))
			return
		}
		if c.hub.onMove == nil {
			return
		}
		if err := c.hub.onMove(req); err != nil {
			c.reply(TypeError, errMsg(err.Error()))
		}
	default:
		c.reply(TypeError, errMsg("unknown type "+env.Type))
	}
}

// reply queues a frame for this client only.
func (c *client) reply(msgType string, v any) {
	frame, err := encode(msgType, v)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
