package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrNilSource is returned when a face has no font source.
	ErrNilSource = errors.New("text: face has no source")

	// ErrInvalidSize is returned for a face size that is not positive.
	ErrInvalidSize = errors.New("text: size must be positive")
)
