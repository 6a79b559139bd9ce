package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

type contextKey string

const identityKey contextKey = "session_identity"

type Verifier interface {
	Verify(token string) (Identity, error)
}

func Require(verifier Verifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromCookie(r)
			if token == "" {
				writeUnauthorized(w, r, commonerrors.ErrNotAuthenticated)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				metrics.SessionValidationsFailed.WithLabelValues("http").Inc()
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "session_rejected",
				}).Warnf("session verification failed: %v", err)
				writeUnauthorized(w, r, commonerrors.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// Optional attaches the identity when a valid cookie is present and otherwise proceeds anonymously.
func Optional(verifier Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromCookie(r)
			if token != "" {
				if identity, err := verifier.Verify(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// TokenFromHandshake resolves the realtime handshake token: query param, then cookie, then bearer header.
func TokenFromHandshake(r *http.Request) string {
	if token := r.URL.Query().Get(constants.SessionCookieName); token != "" {
		return token
	}
	if token := tokenFromCookie(r); token != "" {
		return token
	}
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}

func tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	traceID, _ := r.Context().Value(constants.TraceIDKey).(string)
	commonhttp.WriteErrorEnvelope(w, err.HTTPStatus(), err.Code(), err.Message(), nil, traceID)
}
