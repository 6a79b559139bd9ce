package service

import (
	"context"
	"sync"

	"github.com/AlibekovAA/estate-hub/internal/listing/domain"
)

type savedKey struct {
	userID string
	id     domain.ID
}

// memoryListingRepo mimics the listings tables closely enough for ownership and save semantics.
type memoryListingRepo struct {
	mu       sync.Mutex
	listings map[domain.ID]domain.Listing
	details  map[domain.ID]*domain.Detail
	saved    map[savedKey]bool

	listErr error
}

func newMemoryListingRepo() *memoryListingRepo {
	return &memoryListingRepo{
		listings: make(map[domain.ID]domain.Listing),
		details:  make(map[domain.ID]*domain.Detail),
		saved:    make(map[savedKey]bool),
	}
}

func (r *memoryListingRepo) List(_ context.Context, filter domain.Filter) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Listing, 0)
	for _, l := range r.listings {
		if filter.City != nil && l.City != *filter.City {
			continue
		}
		if l.Price < filter.MinPrice || l.Price > filter.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryListingRepo) FindByID(_ context.Context, id domain.ID) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return domain.Listing{}, ErrListingNotFound
	}
	return l, nil
}

func (r *memoryListingRepo) GetView(ctx context.Context, id domain.ID) (domain.View, error) {
	l, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.View{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.View{Listing: l, Detail: r.details[id], Owner: domain.Owner{Username: "owner-" + l.OwnerID}}, nil
}

func (r *memoryListingRepo) Create(_ context.Context, listing domain.Listing, detail *domain.Detail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = listing
	if detail != nil {
		r.details[listing.ID] = detail
	}
	return nil
}

func (r *memoryListingRepo) Update(_ context.Context, id domain.ID, patch domain.Patch) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return domain.Listing{}, ErrListingNotFound
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Price != nil {
		l.Price = *patch.Price
	}
	if patch.City != nil {
		l.City = *patch.City
	}
	r.listings[id] = l
	return l, nil
}

func (r *memoryListingRepo) Delete(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return ErrListingNotFound
	}
	delete(r.listings, id)
	delete(r.details, id)
	return nil
}

func (r *memoryListingRepo) IsSaved(_ context.Context, userID string, id domain.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[savedKey{userID, id}], nil
}

func (r *memoryListingRepo) ToggleSaved(_ context.Context, userID string, id domain.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return false, ErrListingNotFound
	}
	key := savedKey{userID, id}
	if r.saved[key] {
		delete(r.saved, key)
		return false, nil
	}
	r.saved[key] = true
	return true, nil
}

func (r *memoryListingRepo) ListSaved(_ context.Context, userID string) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0)
	for key := range r.saved {
		if key.userID == userID {
			out = append(out, r.listings[key.id])
		}
	}
	return out, nil
}

type mockIDGenerator struct {
	newIDFunc func() string
}

func (m *mockIDGenerator) NewID() string {
	return m.newIDFunc()
}
