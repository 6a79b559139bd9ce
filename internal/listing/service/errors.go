package service

import commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"

var (
	ErrMissingFields   = commonerrors.ErrMissingFields
	ErrInvalidPayload  = commonerrors.ErrInvalidPayload
	ErrListingNotFound = commonerrors.ErrListingNotFound
	ErrUnauthorized    = commonerrors.ErrUnauthorized
	ErrInternal        = commonerrors.ErrInternalError
)
