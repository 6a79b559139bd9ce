package presence

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/clock"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

type MemoryRegistry struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	leaseTTL time.Duration
	clock    clock.Clock
}

// NewMemoryRegistry keeps entries forever when leaseTTL is zero.
func NewMemoryRegistry(leaseTTL time.Duration, clk clock.Clock) *MemoryRegistry {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MemoryRegistry{
		entries:  make(map[string]Entry),
		leaseTTL: leaseTTL,
		clock:    clk,
	}
}

func (r *MemoryRegistry) Put(_ context.Context, userID, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = Entry{UserID: userID, Handle: handle, LastSeen: r.clock.Now()}
	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, userID string) (Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok || r.expired(e) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (r *MemoryRegistry) RemoveIfHandle(_ context.Context, userID, handle string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.Handle != handle {
		return false, nil
	}
	delete(r.entries, userID)
	return true, nil
}

func (r *MemoryRegistry) Touch(_ context.Context, userID, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.Handle != handle {
		return nil
	}
	e.LastSeen = r.clock.Now()
	r.entries[userID] = e
	return nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if !r.expired(e) {
			n++
		}
	}
	return n, nil
}

// DeleteExpired drops entries whose lease ran out; it is driven by the cleanup worker.
func (r *MemoryRegistry) DeleteExpired(_ context.Context) (int64, error) {
	if r.leaseTTL <= 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
			deleted++
		}
	}
	metrics.PresenceExpiredTotal.Add(float64(deleted))
	return deleted, nil
}

func (r *MemoryRegistry) expired(e Entry) bool {
	return r.leaseTTL > 0 && r.clock.Since(e.LastSeen) > r.leaseTTL
}
