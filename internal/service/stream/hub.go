package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"TicketPulse/internal/domain/models"
	applogger "TicketPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	sendBuffer          = 4
	maxInboundBytes     = 512
)

// Hub pushes every published dashboard snapshot to connected WebSocket clients.
// A client that cannot keep up is disconnected rather than slowing the poller.
type Hub struct {
	upgrader     websocket.Upgrader
	log          *applogger.Logger
	gauge        prometheus.Gauge
	pingInterval time.Duration
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Option configures Hub.
type Option func(*Hub)

func WithLogger(l *applogger.Logger) Option { return func(h *Hub) { h.log = l } }

// WithClientGauge tracks the number of connected clients.
func WithClientGauge(g prometheus.Gauge) Option { return func(h *Hub) { h.gauge = g } }

func WithPingInterval(d time.Duration) Option { return func(h *Hub) { h.pingInterval = d } }

// WithAllowedOrigins restricts upgrades to the given origins; none allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Hub) {
		if len(origins) == 0 {
			return
		}
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[o] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			_, wildcard := allowed["*"]
			return ok || wildcard
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:          applogger.Nop(),
		pingInterval: defaultPingInterval,
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeWS upgrades the request and blocks until the client goes away.
// A newly connected client immediately receives the latest snapshot.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.setGauge(n)
	h.log.Debug("stream client connected", applogger.String("remote", r.RemoteAddr), applogger.Int("clients", n))

	go h.writePump(c)
	h.readPump(c)

	h.remove(c)
	return nil
}

// Publish implements SnapshotPublisher.
func (h *Hub) Publish(_ context.Context, snap *models.DashboardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	h.mu.Lock()
	h.last = data
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.log.Warn("stream client too slow, disconnecting")
		h.remove(c)
	}
	return nil
}

// CloseAll disconnects every client and forgets the latest snapshot.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.last = nil
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session locked"),
			time.Now().Add(time.Second))
		h.remove(c)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	if present {
		h.setGauge(n)
	}
}

func (h *Hub) setGauge(n int) {
	if h.gauge != nil {
		h.gauge.Set(float64(n))
	}
}

// readPump drains client frames so control messages are processed.
func (h *Hub) readPump(c *client) {
	pongWait := h.pingInterval * 2
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
