package domain

import "errors"

// Sentinel errors surfaced by every core operation. The HTTP boundary maps
// them to status codes with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrInvalidArgument  = errors.New("invalid argument")
)
