package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/infrastructure"
)

type outbound struct {
	sessionID string
	data      []byte
}

// Hub maintains the set of active clients and routes messages to them.
// Messages addressed to a session reach only that session's clients.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	pongWait   time.Duration
	pingPeriod time.Duration

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics, cfg config.WebSocketConfig) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub loop in its own goroutine.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := client.context()
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("session_id", client.sessionID),
				slog.String("remote_addr", client.remoteAddr))
			if h.metrics != nil {
				h.metrics.WebSocketClients.Add(ctx, 1)
			}

			data, err := json.Marshal(Message{
				Type: TypeConnection,
				Data: map[string]string{
					"status":     "connected",
					"client_id":  client.id,
					"session_id": client.sessionID,
				},
				Timestamp: time.Now(),
				TraceID:   client.traceID,
			})
			if err == nil {
				select {
				case client.send <- data:
				default:
					h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.remove(client, "Client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				if msg.sessionID == "" || client.sessionID == msg.sessionID {
					targets = append(targets, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.data:
					h.mu.Lock()
					h.messagesSent++
					h.mu.Unlock()
				default:
					h.remove(client, "Client send buffer full, disconnecting")
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, reason,
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, -1)
	}
}

// Publish queues a message for the clients of sessionID, or for every
// client when sessionID is empty. Messages are dropped when the hub is
// stopped or its queue is full.
func (h *Hub) Publish(ctx context.Context, sessionID, msgType string, data interface{}) {
	payload, err := json.Marshal(Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
		TraceID:   infrastructure.GetTraceID(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msgType))
		return
	}

	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- outbound{sessionID: sessionID, data: payload}:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "Broadcast queue full, dropping message",
			slog.String("message_type", msgType))
	}
}

// SendProgress reports upload progress to one session.
func (h *Hub) SendProgress(ctx context.Context, sessionID string, percent int, message string) {
	h.Publish(ctx, sessionID, TypeUploadProgress, Progress{Percent: percent, Message: message})
}

// SendError reports a failed operation to one session.
func (h *Hub) SendError(ctx context.Context, sessionID, code, message string) {
	h.Publish(ctx, sessionID, TypeError, ErrorPayload{Code: code, Message: message})
}

// BroadcastDatasetChanged tells every client that the durable dataset
// changed.
func (h *Hub) BroadcastDatasetChanged(ctx context.Context, reason string, rows int) {
	h.Publish(ctx, "", TypeDatasetChanged, DatasetChanged{Reason: reason, Rows: rows})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Stop stops the hub loop, which closes every client on its way out.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	h.mu.Unlock()
}

// Stats returns current hub counters.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
	}
}
