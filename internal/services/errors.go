package services

import "errors"

// Sentinel errors returned (wrapped) by every service. Handlers map them to
// status codes with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrGenerationFailed = errors.New("generation failed")
)
