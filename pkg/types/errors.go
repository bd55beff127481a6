package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidKind = errors.New("invalid document kind")
	ErrMissingPath = errors.New("document path is required")
)
