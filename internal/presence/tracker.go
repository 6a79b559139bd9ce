package presence

import (
	"context"
	"sync"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
)

const (
	EventUserConnected    = "userConnected"
	EventUserDisconnected = "userDisconnected"
)

type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

type UserLookup interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

type connection struct {
	userID   string
	username string
}

type Tracker struct {
	registry           Registry
	verifier           session.Verifier
	users              UserLookup
	broadcaster        Broadcaster
	removeOnDisconnect bool
	log                *logger.Logger

	mu          sync.RWMutex
	connections map[string]connection
}

type TrackerDeps struct {
	Registry Registry
	Verifier session.Verifier
	Users    UserLookup
	Log      *logger.Logger
}

func NewTracker(deps TrackerDeps, removeOnDisconnect bool) *Tracker {
	return &Tracker{
		registry:           deps.Registry,
		verifier:           deps.Verifier,
		users:              deps.Users,
		removeOnDisconnect: removeOnDisconnect,
		log:                deps.Log,
		connections:        make(map[string]connection),
	}
}

// SetBroadcaster must be called before the first connection is dispatched.
func (t *Tracker) SetBroadcaster(b Broadcaster) {
	t.broadcaster = b
}

// OnConnect leaves the registry untouched and stays silent unless the token resolves to a known user.
func (t *Tracker) OnConnect(ctx context.Context, handle, token string) (session.Identity, bool) {
	if token == "" {
		metrics.PresenceEventsTotal.WithLabelValues("connect", "anonymous").Inc()
		return session.Identity{}, false
	}

	identity, err := t.verifier.Verify(token)
	if err != nil {
		metrics.PresenceEventsTotal.WithLabelValues("connect", "invalid_token").Inc()
		metrics.SessionValidationsFailed.WithLabelValues("websocket").Inc()
		t.log.WithFields(ctx, logger.Fields{
			"handle": handle,
			"action": "presence_connect_rejected",
		}).Debugf("presence connect rejected: %v", err)
		return session.Identity{}, false
	}

	opCtx, cancel := context.WithTimeout(ctx, constants.PresenceOperationTimeout)
	defer cancel()

	user, err := t.users.FindByID(opCtx, userdomain.ID(identity.UserID))
	if err != nil {
		metrics.PresenceEventsTotal.WithLabelValues("connect", "unknown_user").Inc()
		t.log.WithFields(ctx, logger.Fields{
			"user_id": identity.UserID,
			"action":  "presence_connect_unknown_user",
		}).Warnf("presence connect rejected: %v", err)
		return session.Identity{}, false
	}

	if err := t.registry.Put(opCtx, identity.UserID, handle); err != nil {
		metrics.PresenceEventsTotal.WithLabelValues("connect", "store_error").Inc()
		t.log.WithFields(ctx, logger.Fields{
			"user_id": identity.UserID,
			"action":  "presence_put_failed",
		}).Errorf("presence put failed: %v", err)
		return session.Identity{}, false
	}

	t.mu.Lock()
	t.connections[handle] = connection{userID: identity.UserID, username: user.Username}
	t.mu.Unlock()

	t.refreshOnlineGauge(opCtx)
	metrics.PresenceEventsTotal.WithLabelValues("connect", "ok").Inc()
	t.log.WithFields(ctx, logger.Fields{
		"user_id": identity.UserID,
		"handle":  handle,
		"action":  "presence_connect",
	}).Info("user connected")

	if t.broadcaster != nil {
		t.broadcaster.Broadcast(EventUserConnected, user.Username)
	}
	return identity, true
}

// OnDisconnect spares the entry when a newer connection of the same user already replaced it.
func (t *Tracker) OnDisconnect(ctx context.Context, handle string) {
	t.mu.Lock()
	conn, ok := t.connections[handle]
	delete(t.connections, handle)
	t.mu.Unlock()

	if !ok {
		return
	}

	if !t.removeOnDisconnect {
		metrics.PresenceEventsTotal.WithLabelValues("disconnect", "retained").Inc()
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, constants.PresenceOperationTimeout)
	defer cancel()

	removed, err := t.registry.RemoveIfHandle(opCtx, conn.userID, handle)
	if err != nil {
		metrics.PresenceEventsTotal.WithLabelValues("disconnect", "store_error").Inc()
		t.log.WithFields(ctx, logger.Fields{
			"user_id": conn.userID,
			"action":  "presence_remove_failed",
		}).Errorf("presence remove failed: %v", err)
		return
	}
	if !removed {
		metrics.PresenceEventsTotal.WithLabelValues("disconnect", "superseded").Inc()
		return
	}

	t.refreshOnlineGauge(opCtx)
	metrics.PresenceEventsTotal.WithLabelValues("disconnect", "ok").Inc()
	t.log.WithFields(ctx, logger.Fields{
		"user_id": conn.userID,
		"handle":  handle,
		"action":  "presence_disconnect",
	}).Info("user disconnected")

	if t.broadcaster != nil {
		t.broadcaster.Broadcast(EventUserDisconnected, conn.username)
	}
}

// Touch extends the lease of the entry held by handle.
func (t *Tracker) Touch(ctx context.Context, handle string) {
	t.mu.RLock()
	conn, ok := t.connections[handle]
	t.mu.RUnlock()
	if !ok {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, constants.PresenceOperationTimeout)
	defer cancel()

	if err := t.registry.Touch(opCtx, conn.userID, handle); err != nil {
		t.log.WithFields(ctx, logger.Fields{
			"user_id": conn.userID,
			"action":  "presence_touch_failed",
		}).Warnf("presence touch failed: %v", err)
	}
}

func (t *Tracker) Lookup(ctx context.Context, userID string) (Entry, bool, error) {
	return t.registry.Get(ctx, userID)
}

func (t *Tracker) refreshOnlineGauge(ctx context.Context) {
	if n, err := t.registry.Count(ctx); err == nil {
		metrics.PresenceOnlineUsers.Set(float64(n))
	}
}
