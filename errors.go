package glyphcache

import "errors"

// Sentinel errors for the glyphcache package.
var (
	// ErrInvalidBudget is returned by New when the byte budget is negative.
	ErrInvalidBudget = errors.New("glyphcache: negative byte budget")

	// ErrInvalidSize is returned when a bitmap reports a negative allocated size.
	ErrInvalidSize = errors.New("glyphcache: negative bitmap size")
)
