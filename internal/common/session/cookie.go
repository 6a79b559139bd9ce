package session

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
)

type CookieWriter struct {
	secure   bool
	sameSite http.SameSite
}

// NewCookieWriter uses SameSite=None with Secure in production so the cross-site frontend
// receives the cookie, and SameSite=Lax over plain http in development.
func NewCookieWriter(production bool) *CookieWriter {
	if production {
		return &CookieWriter{secure: true, sameSite: http.SameSiteNoneMode}
	}
	return &CookieWriter{secure: false, sameSite: http.SameSiteLaxMode}
}

func (c *CookieWriter) SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func (c *CookieWriter) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
