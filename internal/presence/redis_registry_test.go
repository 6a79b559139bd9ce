package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
)

func newTestRedisRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log, _ := logger.New("", "test", "info")
	return NewRedisRegistry(client, time.Minute, log), mr
}

func TestRedisRegistry_PutGet(t *testing.T) {
	r, mr := newTestRedisRegistry(t)
	ctx := context.Background()

	if err := r.Put(ctx, "u1", "h1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := r.Put(ctx, "u1", "h2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	e, ok, err := r.Get(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if e.Handle != "h2" || e.LastSeen.IsZero() {
		t.Errorf("unexpected entry %+v", e)
	}
	if ttl := mr.TTL("presence:user:u1"); ttl != time.Minute {
		t.Errorf("expected lease ttl of one minute, got %v", ttl)
	}
}

func TestRedisRegistry_CompareAndDelete(t *testing.T) {
	r, mr := newTestRedisRegistry(t)
	ctx := context.Background()

	_ = r.Put(ctx, "u1", "h2")

	removed, err := r.RemoveIfHandle(ctx, "u1", "h1")
	if err != nil || removed {
		t.Fatalf("expected stale handle to be ignored, got removed=%v err=%v", removed, err)
	}
	if !mr.Exists("presence:user:u1") {
		t.Fatal("expected entry to survive stale removal")
	}

	removed, err = r.RemoveIfHandle(ctx, "u1", "h2")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	if _, ok, _ := r.Get(ctx, "u1"); ok {
		t.Error("expected entry to be gone")
	}
}

func TestRedisRegistry_LeaseExpiryAndTouch(t *testing.T) {
	r, mr := newTestRedisRegistry(t)
	ctx := context.Background()

	_ = r.Put(ctx, "u1", "h1")
	_ = r.Put(ctx, "u2", "h2")

	mr.FastForward(45 * time.Second)
	if err := r.Touch(ctx, "u1", "h1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	mr.FastForward(30 * time.Second)

	if _, ok, _ := r.Get(ctx, "u2"); ok {
		t.Error("expected u2 lease to have expired")
	}
	if _, ok, _ := r.Get(ctx, "u1"); !ok {
		t.Error("expected touched u1 to be alive")
	}
	if n, err := r.Count(ctx); err != nil || n != 1 {
		t.Errorf("expected count 1, got %d (%v)", n, err)
	}
}

func TestRedisRegistry_Unavailable(t *testing.T) {
	r, mr := newTestRedisRegistry(t)
	mr.Close()

	err := r.Put(context.Background(), "u1", "h1")
	if !errors.Is(err, ErrPresenceUnavailable) {
		t.Fatalf("expected ErrPresenceUnavailable, got %v", err)
	}
}

func TestRedisRegistry_CancelledCallersDoNotTripBreaker(t *testing.T) {
	r, _ := newTestRedisRegistry(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		if err := r.Put(cancelled, "u1", "h1"); err == nil {
			t.Fatal("expected cancelled put to fail")
		}
	}

	if err := r.Put(context.Background(), "u1", "h2"); err != nil {
		t.Fatalf("expected breaker to stay closed, got %v", err)
	}
	e, ok, err := r.Get(context.Background(), "u1")
	if err != nil || !ok || e.Handle != "h2" {
		t.Fatalf("expected h2 entry, got %+v ok=%v err=%v", e, ok, err)
	}
}
