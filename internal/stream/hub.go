package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope of everything the hub writes.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type hello struct {
	ClientID string `json:"client_id"`
	Scene    string `json:"scene"`
}

// Hub fans step statistics out to websocket clients. It implements
// sim.Observer; a client that cannot keep up is dropped rather than
// slowing the simulation down.
type Hub struct {
	scene string
	every int

	mu      sync.Mutex
	clients map[*Client]struct{}
	steps   int

	log logrus.FieldLogger
}

// NewHub builds a hub that forwards every n-th step. n < 1 forwards all.
func NewHub(scene string, every int, log logrus.FieldLogger) *Hub {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Hub{
		scene:   scene,
		every:   max(every, 1),
		clients: make(map[*Client]struct{}),
		log:     log.WithField("component", "stream"),
	}
}

func (h *Hub) OnStep(st sim.StepStats) {
	h.mu.Lock()
	h.steps++
	due := h.steps%h.every == 0
	h.mu.Unlock()
	if !due {
		return
	}

	data, err := json.Marshal(Message{Type: "step", Payload: st})
	if err != nil {
		h.log.WithError(err).Error("marshal step")
		return
	}
	h.Broadcast(data)
}

// Broadcast queues data on every client without blocking.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.WithField("client", c.ID).Warn("send buffer full, dropping client")
			h.removeLocked(c)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}

	c := &Client{
		ID:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	greeting, _ := json.Marshal(Message{Type: "hello", Payload: hello{ClientID: c.ID, Scene: h.scene}})
	c.send <- greeting

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("client", c.ID).Info("client connected")

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.WithField("client", c.ID).Info("client disconnected")
}
