package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

// PresenceTracker receives connection lifecycle events from the Run loop.
type PresenceTracker interface {
	OnConnect(ctx context.Context, handle, token string) (session.Identity, bool)
	OnDisconnect(ctx context.Context, handle string)
	Touch(ctx context.Context, handle string)
}

type Hub struct {
	clients     sync.Map
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	stopOnce    sync.Once
	clientCount atomic.Int64
	presence    PresenceTracker
	log         *logger.Logger
	ctx         context.Context
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		ctx:        context.Background(),
	}
}

// UsePresence must be called before Run.
func (h *Hub) UsePresence(p PresenceTracker) {
	h.presence = p
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Run is the single dispatch loop; every presence change happens on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.clients.Store(client.handle, client)
			total := h.clientCount.Add(1)
			metrics.WebSocketConnectionsActive.Inc()

			if h.presence != nil {
				if identity, ok := h.presence.OnConnect(ctx, client.handle, client.token); ok {
					client.userID = identity.UserID
				}
			}
			client.token = ""

			h.log.WithFields(ctx, logger.Fields{
				"handle":  client.handle,
				"user_id": client.userID,
				"total":   total,
				"action":  "ws_register",
			}).Info("websocket client registered")

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients.LoadAndDelete(client.handle); !ok {
		return
	}
	total := h.clientCount.Add(-1)
	close(client.send)
	metrics.WebSocketConnectionsActive.Dec()
	metrics.WebSocketDisconnections.WithLabelValues("unregister").Inc()

	h.log.WithFields(h.ctx, logger.Fields{
		"handle":  client.handle,
		"user_id": client.userID,
		"total":   total,
		"action":  "ws_unregister",
	}).Info("websocket client unregistered")

	if h.presence != nil {
		h.presence.OnDisconnect(h.ctx, client.handle)
	}
}

// Broadcast queues the event for every connection; a client whose buffer is full misses it.
func (h *Hub) Broadcast(eventType string, payload any) {
	msgBytes, err := marshalMessage(MessageType(eventType), payload)
	if err != nil {
		h.log.WithFields(h.ctx, logger.Fields{
			"type":   eventType,
			"action": "ws_broadcast_marshal",
		}).Errorf("websocket broadcast marshal failed: %v", err)
		return
	}

	metrics.WebSocketBroadcastsTotal.WithLabelValues(eventType).Inc()
	h.clients.Range(func(_, value any) bool {
		client := value.(*Client)
		select {
		case client.send <- msgBytes:
		default:
			metrics.WebSocketDroppedMessages.WithLabelValues(eventType).Inc()
		}
		return true
	})
}

func (h *Hub) touch(client *Client) {
	if h.presence != nil {
		h.presence.Touch(h.ctx, client.handle)
	}
}

func (h *Hub) ClientCount() int64 {
	return h.clientCount.Load()
}

func (h *Hub) shutdown() {
	shutdownMsg, err := marshalMessage(TypeShutdown, nil)
	if err != nil {
		shutdownMsg = nil
	}

	count := 0
	h.clients.Range(func(key, value any) bool {
		client := value.(*Client)
		if shutdownMsg != nil {
			select {
			case client.send <- shutdownMsg:
			default:
			}
		}
		close(client.send)
		h.clients.Delete(key)
		metrics.WebSocketConnectionsActive.Dec()
		metrics.WebSocketDisconnections.WithLabelValues("shutdown").Inc()
		count++
		return true
	})
	h.clientCount.Store(0)

	h.log.WithFields(h.ctx, logger.Fields{
		"clients": count,
		"action":  "ws_hub_shutdown",
	}).Info("websocket hub shutdown completed")
}
