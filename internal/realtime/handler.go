package realtime

import (
	"context"
	"net/http"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/estate-hub/internal/common/config"
	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/estate-hub/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
	"github.com/AlibekovAA/estate-hub/internal/presence"
)

type PresenceLookup interface {
	Lookup(ctx context.Context, userID string) (presence.Entry, bool, error)
}

type presenceResponse struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

type Handler struct {
	hub      *Hub
	lookup   PresenceLookup
	handles  commoncrypto.IDGenerator
	upgrader gorillaWS.Upgrader
	cfg      config.WebSocketConfig
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
	timeout  time.Duration
}

func NewHandler(
	hub *Hub,
	lookup PresenceLookup,
	handles commoncrypto.IDGenerator,
	clientOrigin string,
	cfg config.WebSocketConfig,
	timeout time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		hub:     hub,
		lookup:  lookup,
		handles: handles,
		cfg:     cfg,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
		timeout: timeout,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origin == clientOrigin {
					return true
				}
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

func (h *Handler) Routes(mux *http.ServeMux, limiter *commonhttp.StrictRateLimiter) {
	mux.HandleFunc("GET /ws", h.handleWebSocket)
	mux.Handle("GET /api/presence/{userID}", limiter.MiddlewareForPath("/api/presence")(http.HandlerFunc(h.presenceStatus)))
}

// handleWebSocket upgrades anonymous callers too; they receive broadcasts but are never tracked.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromHandshake(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WebSocketErrors.WithLabelValues("upgrade").Inc()
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "ws_upgrade_failed",
		}).Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, h.handles.NewID(), token, h.cfg, h.log)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(gorillaWS.CloseMessage,
			gorillaWS.FormatCloseMessage(gorillaWS.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	client.Start()
}

func (h *Handler) presenceStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	entry, ok, err := h.lookup.Lookup(ctx, userID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	resp := presenceResponse{UserID: userID, Online: ok}
	if ok {
		lastSeen := entry.LastSeen
		resp.LastSeen = &lastSeen
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}
