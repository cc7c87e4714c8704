package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"

	"pitchtalk-backend/internal/models"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub relays conversation events to every connected chat widget.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*client]struct{}
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHub builds a hub. redisClient may be nil, in which case events only
// arrive through Broadcast.
func NewHub(redisClient *redis.Client, frontendURL string, logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*client]struct{}),
		redisClient: redisClient,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.register(c)

	// Clients never send anything meaningful; reading detects the disconnect.
	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Debug("websocket connected", "total", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.conn.Close()
	h.logger.Debug("websocket disconnected", "total", len(h.clients))
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run relays events from the Redis channel until ctx is done. Without Redis
// it just waits for ctx.
func (h *Hub) Run(ctx context.Context) {
	if h.redisClient == nil {
		<-ctx.Done()
		return
	}

	pubsub := h.redisClient.Subscribe(ctx, models.ConversationUpdatesChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast([]byte(msg.Payload))
		}
	}
}

// Broadcast writes data to every connection concurrently. Connections that
// fail the write are dropped.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var failedMu sync.Mutex
	var failed []*client

	var wg conc.WaitGroup
	for _, c := range clients {
		wg.Go(func() {
			if err := c.write(data); err != nil {
				failedMu.Lock()
				failed = append(failed, c)
				failedMu.Unlock()
			}
		})
	}
	wg.Wait()

	for _, c := range failed {
		h.unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
