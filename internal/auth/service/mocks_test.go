package service

import (
	"context"
	"sync"

	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

// memoryUserRepo enforces username and email uniqueness like the users table.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userdomain.User{}, ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userdomain.User{}, ErrUserNotFound
	}
	return u, nil
}

type mockHasher struct {
	hashFunc   func(password string) (string, error)
	verifyFunc func(hash, password string) (bool, error)
}

func (m *mockHasher) Hash(password string) (string, error) {
	return m.hashFunc(password)
}

func (m *mockHasher) Verify(hash, password string) (bool, error) {
	return m.verifyFunc(hash, password)
}

type mockIDGenerator struct {
	newIDFunc func() string
}

func (m *mockIDGenerator) NewID() string {
	return m.newIDFunc()
}
