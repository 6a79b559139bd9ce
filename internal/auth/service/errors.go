package service

import commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"

var (
	ErrInvalidCredentials = commonerrors.ErrInvalidCredentials
	ErrMissingFields      = commonerrors.ErrMissingFields
	ErrUserAlreadyExists  = commonerrors.ErrUserAlreadyExists
	ErrUserNotFound       = commonerrors.ErrUserNotFound
	ErrInternal           = commonerrors.ErrInternalError
)
