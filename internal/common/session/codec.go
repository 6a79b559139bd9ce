package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/estate-hub/internal/common/clock"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
)

var ErrInvalidToken = commonerrors.ErrInvalidToken

var errMissingUserID = errors.New("missing id claim")

type Identity struct {
	UserID  string
	IsAdmin bool
}

type tokenClaims struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	clock  clock.Clock
}

func NewCodec(secret string, clk clock.Clock) *Codec {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Codec{
		secret: []byte(secret),
		clock:  clk,
	}
}

func (c *Codec) Issue(identity Identity, ttl time.Duration) (string, time.Time, error) {
	now := c.clock.Now()
	expiresAt := now.Add(ttl)

	claims := tokenClaims{
		ID:      identity.UserID,
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify never panics; every failure is reported as ErrInvalidToken with the parser error as cause.
func (c *Codec) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.ID == "" {
		return Identity{}, ErrInvalidToken.WithCause(errMissingUserID)
	}

	return Identity{
		UserID:  claims.ID,
		IsAdmin: claims.IsAdmin,
	}, nil
}
