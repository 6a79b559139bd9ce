package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/estate-hub/internal/common/crypto"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
	userrepo "github.com/AlibekovAA/estate-hub/internal/user/repository"
)

type TokenIssuer interface {
	Issue(identity session.Identity, ttl time.Duration) (string, time.Time, error)
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      TokenIssuer
	clock       clock.Clock
	log         *logger.Logger
	sessionTTL  time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	tokens TokenIssuer,
	sessionTTL time.Duration,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		tokens:      tokens,
		clock:       clk,
		log:         log,
		sessionTTL:  sessionTTL,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	User      userdomain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return ErrMissingFields
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return ErrInternal.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(s.idGenerator.NewID()),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_conflict",
			}).Warn("register failed: username or email already exists")
			return err
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return ErrInternal.WithCause(err)
	}

	incrementUsersRegistered()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("user registered")

	return nil
}

// Login answers an unknown username and a wrong password identically, including the bcrypt cost.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return LoginResult{}, ErrMissingFields
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = s.hasher.Verify(s.dummyPasswordHash(), input.Password)
			recordLoginAttempt("invalid")
			s.log.WithFields(ctx, logger.Fields{
				"action": "login_invalid_credentials",
			}).Warn("login failed: invalid credentials")
			return LoginResult{}, ErrInvalidCredentials
		}
		recordLoginAttempt("error")
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_lookup_failed",
		}).Errorf("login failed: %v", err)
		return LoginResult{}, ErrInternal.WithCause(err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, input.Password)
	if err != nil {
		recordLoginAttempt("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_verify_failed",
		}).Errorf("login failed: stored hash unusable: %v", err)
		return LoginResult{}, ErrInternal.WithCause(err)
	}
	if !ok {
		recordLoginAttempt("invalid")
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_invalid_credentials",
		}).Warn("login failed: invalid credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(session.Identity{
		UserID:  string(user.ID),
		IsAdmin: user.IsAdmin,
	}, s.sessionTTL)
	if err != nil {
		recordLoginAttempt("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_token_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return LoginResult{}, ErrInternal.WithCause(err)
	}

	recordLoginAttempt("success")
	incrementSessionsIssued()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")

	return LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("estate-hub-timing-equalizer")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
