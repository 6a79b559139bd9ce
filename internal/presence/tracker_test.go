package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (session.Identity, error) {
	var id string
	if _, err := fmt.Sscanf(token, "valid:%s", &id); err != nil || id == "" {
		return session.Identity{}, session.ErrInvalidToken
	}
	return session.Identity{UserID: id}, nil
}

type stubUsers struct{}

func (stubUsers) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	if id == "ghost" {
		return userdomain.User{}, errors.New("not found")
	}
	return userdomain.User{ID: id, Username: "name-" + string(id)}, nil
}

type event struct {
	eventType string
	payload   any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBroadcaster) Broadcast(eventType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{eventType, payload})
}

func newTestTracker(removeOnDisconnect bool) (*Tracker, *MemoryRegistry, *recordingBroadcaster) {
	log, _ := logger.New("", "test", "info")
	reg := NewMemoryRegistry(0, nil)
	b := &recordingBroadcaster{}
	tr := NewTracker(TrackerDeps{Registry: reg, Verifier: stubVerifier{}, Users: stubUsers{}, Log: log}, removeOnDisconnect)
	tr.SetBroadcaster(b)
	return tr, reg, b
}

func TestTracker_ConnectRegistersAndBroadcasts(t *testing.T) {
	tr, reg, b := newTestTracker(true)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		if _, ok := tr.OnConnect(ctx, fmt.Sprintf("h%d", i), fmt.Sprintf("valid:u%d", i)); !ok {
			t.Fatalf("expected connect %d to succeed", i)
		}
	}

	if count, _ := reg.Count(ctx); count != n {
		t.Errorf("expected %d entries, got %d", n, count)
	}
	if len(b.events) != n || b.events[0].eventType != EventUserConnected || b.events[0].payload != "name-u0" {
		t.Errorf("unexpected broadcasts %+v", b.events)
	}
}

func TestTracker_RejectedConnectIsSilent(t *testing.T) {
	tr, reg, b := newTestTracker(true)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "valid:ghost"} {
		if _, ok := tr.OnConnect(ctx, "h1", token); ok {
			t.Errorf("expected token %q to be rejected", token)
		}
	}

	if count, _ := reg.Count(ctx); count != 0 {
		t.Errorf("expected empty registry, got %d", count)
	}
	if len(b.events) != 0 {
		t.Errorf("expected no broadcast, got %+v", b.events)
	}
}

func TestTracker_DisconnectRemovesOwnEntry(t *testing.T) {
	tr, reg, b := newTestTracker(true)
	ctx := context.Background()

	tr.OnConnect(ctx, "h1", "valid:u1")
	tr.OnDisconnect(ctx, "h1")

	if _, ok, _ := reg.Get(ctx, "u1"); ok {
		t.Error("expected entry to be removed")
	}
	if len(b.events) != 2 || b.events[1].eventType != EventUserDisconnected || b.events[1].payload != "name-u1" {
		t.Errorf("unexpected broadcasts %+v", b.events)
	}
}

func TestTracker_StaleDisconnectKeepsReconnect(t *testing.T) {
	tr, reg, b := newTestTracker(true)
	ctx := context.Background()

	tr.OnConnect(ctx, "h1", "valid:u1")
	tr.OnConnect(ctx, "h2", "valid:u1")
	tr.OnDisconnect(ctx, "h1")

	e, ok, _ := reg.Get(ctx, "u1")
	if !ok || e.Handle != "h2" {
		t.Fatalf("expected reconnect h2 to keep the entry, got %+v ok=%v", e, ok)
	}
	for _, ev := range b.events {
		if ev.eventType == EventUserDisconnected {
			t.Errorf("expected no disconnect broadcast, got %+v", b.events)
		}
	}
}

func TestTracker_RetainOnDisconnectLeavesStaleEntry(t *testing.T) {
	tr, reg, b := newTestTracker(false)
	ctx := context.Background()

	tr.OnConnect(ctx, "h1", "valid:u1")
	tr.OnDisconnect(ctx, "h1")

	if _, ok, _ := reg.Get(ctx, "u1"); !ok {
		t.Error("expected stale entry to remain with removal disabled")
	}
	if len(b.events) != 1 {
		t.Errorf("expected only the connect broadcast, got %+v", b.events)
	}
}

func TestTracker_TouchAndLookup(t *testing.T) {
	tr, _, _ := newTestTracker(true)
	ctx := context.Background()

	tr.OnConnect(ctx, "h1", "valid:u1")
	tr.Touch(ctx, "h1")
	tr.Touch(ctx, "unknown")

	e, ok, err := tr.Lookup(ctx, "u1")
	if err != nil || !ok || e.UserID != "u1" {
		t.Errorf("unexpected lookup %+v ok=%v err=%v", e, ok, err)
	}
}
