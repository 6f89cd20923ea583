// internal/session/errors.go

package session

import (
	apperrors "wspick/internal/error"
)

var (
	ErrNotConnected       = apperrors.New(apperrors.ValidationError, "not connected", nil)
	ErrNotDirectory       = apperrors.New(apperrors.ValidationError, "entry is not a directory", nil)
	ErrNavigationInFlight = apperrors.New(apperrors.ValidationError, "navigation already in progress", nil)
	ErrEmptySelection     = apperrors.New(apperrors.ValidationError, "nothing selected", nil)
	ErrMissingHostname    = apperrors.New(apperrors.ValidationError, "hostname is required", nil)
)
