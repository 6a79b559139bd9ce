package repository

import (
	"context"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/db"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	"github.com/AlibekovAA/estate-hub/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const userColumns = `id, username, email, password_hash, avatar, is_admin, created_at`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, avatar, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		user.IsAdmin,
		user.CreatedAt,
	)
	if err != nil && db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", start)
		return commonerrors.ErrUserAlreadyExists.WithCause(err)
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.q.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)

	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "find user by username", start)
	}
	db.MeasureQueryDuration("find user by username", start)
	return user, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.q.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		string(id),
	)

	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "find user by id", start)
	}
	db.MeasureQueryDuration("find user by id", start)
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	return user, err
}
