package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/auth/service"
	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Authenticator interface {
	Register(ctx context.Context, input service.RegisterInput) error
	Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
	SessionTTL() time.Duration
}

type Handler struct {
	auth    Authenticator
	cookies *session.CookieWriter
	errors  *commonhttp.ErrorHandler
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(auth Authenticator, cookies *session.CookieWriter, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		auth:    auth,
		cookies: cookies,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
		timeout: timeout,
	}
}

func (h *Handler) Routes(mux *http.ServeMux, limiter *commonhttp.StrictRateLimiter) {
	mux.Handle("POST /api/auth/register", limiter.MiddlewareForPath("/api/auth/register")(http.HandlerFunc(h.register)))
	mux.Handle("POST /api/auth/login", limiter.MiddlewareForPath("/api/auth/login")(http.HandlerFunc(h.login)))
	mux.HandleFunc("POST /api/auth/logout", h.logout)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusCreated, "User created successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.auth.Login(ctx, service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, result.Token, h.auth.SessionTTL())
	commonhttp.WriteJSON(w, http.StatusOK, userResponse(result.User))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearCookie(w)
	commonhttp.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func userResponse(u userdomain.User) userdomain.Public {
	return u.Public()
}
