package types

import "errors"

// Domain errors shared by the accessor and its callers
var (
	// Lookup errors
	ErrNotFound     = errors.New("symbol not found")
	ErrInvalidQuery = errors.New("invalid query string")

	// Validation errors
	ErrEmptyName    = errors.New("record name is required")
	ErrMissingClass = errors.New("member records require an owning class")
	ErrEmptySlug    = errors.New("page slug is required")
	ErrInvalidKind  = errors.New("invalid symbol kind")
	ErrInvalidLine  = errors.New("line numbers must be positive")
	ErrInvalidScore = errors.New("invalid match score")
)
