package http

import (
	"context"
	"net/http"
	"time"

	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	"github.com/AlibekovAA/estate-hub/internal/listing/domain"
	"github.com/AlibekovAA/estate-hub/internal/listing/service"
)

type ListingService interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Listing, error)
	Get(ctx context.Context, id domain.ID, viewerID string) (domain.View, error)
	Add(ctx context.Context, ownerID string, input service.AddInput) (domain.Listing, error)
	Update(ctx context.Context, id domain.ID, callerID string, patch domain.Patch) (domain.Listing, error)
	Delete(ctx context.Context, id domain.ID, callerID string) error
	ToggleSaved(ctx context.Context, userID string, id domain.ID) (bool, error)
	Saved(ctx context.Context, userID string) ([]domain.Listing, error)
}

// addRequest keeps the listing fields at the top level with the optional detail beside them.
// Any userId in the body is ignored; the owner is the session user.
type addRequest struct {
	Title     string         `json:"title"`
	Price     flexInt        `json:"price"`
	Images    []string       `json:"images"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	Bedroom   flexInt        `json:"bedroom"`
	Bathroom  flexInt        `json:"bathroom"`
	Latitude  string         `json:"latitude"`
	Longitude string         `json:"longitude"`
	Type      string         `json:"type" validate:"omitempty,oneof=buy rent"`
	Property  string         `json:"property"`
	Detail    *domain.Detail `json:"postDetail"`
}

type updateRequest struct {
	Title     *string   `json:"title"`
	Price     *int64    `json:"price" validate:"omitempty,gt=0"`
	Images    *[]string `json:"images"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	Bedroom   *int      `json:"bedroom" validate:"omitempty,min=0"`
	Bathroom  *int      `json:"bathroom" validate:"omitempty,min=0"`
	Latitude  *string   `json:"latitude"`
	Longitude *string   `json:"longitude"`
	Type      *string   `json:"type" validate:"omitempty,oneof=buy rent"`
	Property  *string   `json:"property" validate:"omitempty,oneof=apartment house condo land"`
}

func (r updateRequest) patch() domain.Patch {
	p := domain.Patch{
		Title:     r.Title,
		Price:     r.Price,
		Images:    r.Images,
		Address:   r.Address,
		City:      r.City,
		Bedroom:   r.Bedroom,
		Bathroom:  r.Bathroom,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
	if r.Type != nil {
		t := domain.Type(*r.Type)
		p.Type = &t
	}
	if r.Property != nil {
		prop := domain.Property(*r.Property)
		p.Property = &prop
	}
	return p
}

type saveResponse struct {
	Saved bool `json:"saved"`
}

type Handler struct {
	listings ListingService
	verifier session.Verifier
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
	timeout  time.Duration
}

func NewHandler(listings ListingService, verifier session.Verifier, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		listings: listings,
		verifier: verifier,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
		timeout:  timeout,
	}
}

func (h *Handler) Routes(mux *http.ServeMux, limiter *commonhttp.StrictRateLimiter) {
	general := limiter.MiddlewareForPath("/api/listings")
	optional := session.Optional(h.verifier)
	require := session.Require(h.verifier, h.log)

	mux.Handle("GET /api/listings", general(http.HandlerFunc(h.list)))
	mux.Handle("GET /api/listings/{id}", general(optional(http.HandlerFunc(h.get))))
	mux.Handle("POST /api/listings", general(require(http.HandlerFunc(h.add))))
	mux.Handle("PUT /api/listings/{id}", general(require(http.HandlerFunc(h.update))))
	mux.Handle("DELETE /api/listings/{id}", general(require(http.HandlerFunc(h.delete))))
	mux.Handle("POST /api/listings/{id}/save", general(require(http.HandlerFunc(h.toggleSaved))))
	mux.Handle("GET /api/users/me/saved", general(require(http.HandlerFunc(h.saved))))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listings, err := h.listings.List(ctx, filter)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, listings)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if identity, ok := session.FromContext(r.Context()); ok {
		viewerID = identity.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.listings.Get(ctx, domain.ID(r.PathValue("id")), viewerID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	identity, _ := session.FromContext(r.Context())

	var req addRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listing, err := h.listings.Add(ctx, identity.UserID, service.AddInput{
		Title:     req.Title,
		Price:     req.Price.int64(),
		Images:    req.Images,
		Address:   req.Address,
		City:      req.City,
		Bedroom:   req.Bedroom.intPtr(),
		Bathroom:  req.Bathroom.intPtr(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Type:      domain.Type(req.Type),
		Property:  domain.Property(req.Property),
		Detail:    req.Detail,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity, _ := session.FromContext(r.Context())

	var req updateRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listing, err := h.listings.Update(ctx, domain.ID(r.PathValue("id")), identity.UserID, req.patch())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := session.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.listings.Delete(ctx, domain.ID(r.PathValue("id")), identity.UserID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusOK, "Listing successfully deleted!")
}

func (h *Handler) toggleSaved(w http.ResponseWriter, r *http.Request) {
	identity, _ := session.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	saved, err := h.listings.ToggleSaved(ctx, identity.UserID, domain.ID(r.PathValue("id")))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, saveResponse{Saved: saved})
}

func (h *Handler) saved(w http.ResponseWriter, r *http.Request) {
	identity, _ := session.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listings, err := h.listings.Saved(ctx, identity.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, listings)
}
