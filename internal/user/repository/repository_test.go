package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	"github.com/AlibekovAA/estate-hub/internal/user/domain"
)

type mockRow struct {
	scanFunc func(dest ...interface{}) error
}

func (r *mockRow) Scan(dest ...interface{}) error {
	return r.scanFunc(dest...)
}

type mockQuerier struct {
	execFunc     func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	queryRowFunc func(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return m.execFunc(ctx, sql, args...)
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.queryRowFunc(ctx, sql, args...)
}

func TestCreate_UniqueViolationMapsToConflict(t *testing.T) {
	q := &mockQuerier{execFunc: func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
		return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}}

	err := NewPgRepository(q).Create(context.Background(), domain.User{ID: "u1", Username: "alice"})
	if !errors.Is(err, commonerrors.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestCreate_OtherErrorsWrapped(t *testing.T) {
	q := &mockQuerier{execFunc: func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
		return nil, errors.New("connection reset")
	}}

	err := NewPgRepository(q).Create(context.Background(), domain.User{ID: "u1"})
	if err == nil || errors.Is(err, commonerrors.ErrUserAlreadyExists) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	q := &mockQuerier{queryRowFunc: func(context.Context, string, ...interface{}) pgx.Row {
		return &mockRow{scanFunc: func(...interface{}) error { return pgx.ErrNoRows }}
	}}

	_, err := NewPgRepository(q).FindByID(context.Background(), "missing")
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindByUsername_Scans(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &mockQuerier{queryRowFunc: func(_ context.Context, _ string, args ...interface{}) pgx.Row {
		if args[0] != "alice" {
			t.Errorf("unexpected username arg %v", args[0])
		}
		return &mockRow{scanFunc: func(dest ...interface{}) error {
			*dest[0].(*domain.ID) = "u1"
			*dest[1].(*string) = "alice"
			*dest[2].(*string) = "a@x.com"
			*dest[3].(*string) = "hash"
			*dest[5].(*bool) = false
			*dest[6].(*time.Time) = created
			return nil
		}}
	}}

	user, err := NewPgRepository(q).FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "u1" || user.Email != "a@x.com" || !user.CreatedAt.Equal(created) {
		t.Errorf("unexpected user %+v", user)
	}
	if user.Avatar != nil {
		t.Errorf("expected nil avatar, got %v", *user.Avatar)
	}
}
