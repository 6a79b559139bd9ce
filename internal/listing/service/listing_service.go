package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AlibekovAA/estate-hub/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/estate-hub/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/listing/domain"
	"github.com/AlibekovAA/estate-hub/internal/listing/repository"
)

type ListingService struct {
	repo        repository.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewListingService(
	repo repository.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *ListingService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ListingService{
		repo:        repo,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

type AddInput struct {
	Title     string
	Price     int64
	Images    []string
	Address   string
	City      string
	Bedroom   *int
	Bathroom  *int
	Latitude  string
	Longitude string
	Type      domain.Type
	Property  domain.Property
	Detail    *domain.Detail
}

func (s *ListingService) List(ctx context.Context, filter domain.Filter) ([]domain.Listing, error) {
	listings, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_listings_failed",
		}).Errorf("list listings failed: %v", err)
		return nil, ErrInternal.WithCause(err)
	}

	recordOperation("list")
	observeSearchResults(len(listings))
	return listings, nil
}

// Get resolves isSaved only for a signed-in viewer; viewerID is empty for anonymous callers.
func (s *ListingService) Get(ctx context.Context, id domain.ID, viewerID string) (domain.View, error) {
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return domain.View{}, s.mapRepoError(ctx, err, "get")
	}

	if viewerID != "" {
		saved, err := s.repo.IsSaved(ctx, viewerID, id)
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"listing_id": string(id),
				"user_id":    viewerID,
				"action":     "get_listing_saved_failed",
			}).Warnf("saved lookup failed, reporting unsaved: %v", err)
		}
		view.IsSaved = saved
	}

	recordOperation("get")
	return view, nil
}

// Add always records ownerID as the owner; any owner supplied by the client is ignored upstream.
func (s *ListingService) Add(ctx context.Context, ownerID string, input AddInput) (domain.Listing, error) {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if input.Price == 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(input.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(input.City) == "" {
		missing = append(missing, "city")
	}
	if input.Property == "" {
		missing = append(missing, "property")
	}
	if len(missing) > 0 {
		return domain.Listing{}, ErrMissingFields.WithCause(errors.New(strings.Join(missing, ", ")))
	}

	if !input.Property.Valid() {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("unknown property category")
	}
	if input.Type == "" {
		input.Type = domain.TypeBuy
	}
	if !input.Type.Valid() {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("unknown listing type")
	}
	if input.Price < 0 {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("price must be positive")
	}
	if negative(input.Bedroom) || negative(input.Bathroom) {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("room counts must not be negative")
	}

	listing := domain.Listing{
		ID:        domain.ID(s.idGenerator.NewID()),
		Title:     input.Title,
		Price:     input.Price,
		Images:    input.Images,
		Address:   input.Address,
		City:      input.City,
		Bedroom:   input.Bedroom,
		Bathroom:  input.Bathroom,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Type:      input.Type,
		Property:  input.Property,
		OwnerID:   ownerID,
		CreatedAt: s.clock.Now(),
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	if err := s.repo.Create(ctx, listing, input.Detail); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return domain.Listing{}, ErrUnauthorized.WithCause(err)
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": ownerID,
			"action":  "add_listing_failed",
		}).Errorf("add listing failed: %v", err)
		return domain.Listing{}, ErrInternal.WithCause(err)
	}

	recordOperation("add")
	s.log.WithFields(ctx, logger.Fields{
		"listing_id": string(listing.ID),
		"user_id":    ownerID,
		"action":     "add_listing_success",
	}).Info("listing added")

	return listing, nil
}

func (s *ListingService) Update(ctx context.Context, id domain.ID, callerID string, patch domain.Patch) (domain.Listing, error) {
	if err := s.authorizeOwner(ctx, id, callerID, "update"); err != nil {
		return domain.Listing{}, err
	}

	if patch.Type != nil && !patch.Type.Valid() {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("unknown listing type")
	}
	if patch.Property != nil && !patch.Property.Valid() {
		return domain.Listing{}, ErrInvalidPayload.WithMessage("unknown property category")
	}

	listing, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Listing{}, s.mapRepoError(ctx, err, "update")
	}

	recordOperation("update")
	s.log.WithFields(ctx, logger.Fields{
		"listing_id": string(id),
		"user_id":    callerID,
		"action":     "update_listing_success",
	}).Info("listing updated")

	return listing, nil
}

func (s *ListingService) Delete(ctx context.Context, id domain.ID, callerID string) error {
	if err := s.authorizeOwner(ctx, id, callerID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(ctx, err, "delete")
	}

	recordOperation("delete")
	s.log.WithFields(ctx, logger.Fields{
		"listing_id": string(id),
		"user_id":    callerID,
		"action":     "delete_listing_success",
	}).Info("listing deleted")

	return nil
}

// ToggleSaved reports whether the listing is saved after the call.
func (s *ListingService) ToggleSaved(ctx context.Context, userID string, id domain.ID) (bool, error) {
	saved, err := s.repo.ToggleSaved(ctx, userID, id)
	if err != nil {
		return false, s.mapRepoError(ctx, err, "toggle_saved")
	}

	recordOperation("toggle_saved")
	return saved, nil
}

func (s *ListingService) Saved(ctx context.Context, userID string) ([]domain.Listing, error) {
	listings, err := s.repo.ListSaved(ctx, userID)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, "list_saved")
	}

	recordOperation("list_saved")
	return listings, nil
}

// authorizeOwner answers NotFound for a missing listing and Unauthorized for anyone but its owner.
func (s *ListingService) authorizeOwner(ctx context.Context, id domain.ID, callerID, operation string) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(ctx, err, operation)
	}

	if listing.OwnerID != callerID {
		s.log.WithFields(ctx, logger.Fields{
			"listing_id": string(id),
			"user_id":    callerID,
			"action":     operation + "_listing_forbidden",
		}).Warn("caller does not own listing")
		return ErrUnauthorized
	}
	return nil
}

func (s *ListingService) mapRepoError(ctx context.Context, err error, operation string) error {
	if errors.Is(err, ErrListingNotFound) {
		return ErrListingNotFound
	}
	s.log.WithFields(ctx, logger.Fields{
		"action": operation + "_listing_failed",
	}).Errorf("%s listing failed: %v", operation, err)
	return ErrInternal.WithCause(err)
}

func negative(n *int) bool {
	return n != nil && *n < 0
}
