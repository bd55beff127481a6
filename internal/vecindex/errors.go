package vecindex

import "errors"

// Index and snapshot errors
var (
	ErrInvalidDimension  = errors.New("dimension must be positive")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrCountMismatch     = errors.New("vector and document counts differ")
	ErrOrdinalOutOfRange = errors.New("ordinal out of range")
	ErrMissingArtifact   = errors.New("snapshot artifact missing")
	ErrCorruptSnapshot   = errors.New("corrupt index snapshot")
	ErrUntrustedArtifact = errors.New("snapshot metadata file is world-writable")
)
