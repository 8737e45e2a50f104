package raster

import "errors"

// Sentinel errors for raster package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("raster: empty font data")

	// ErrNoOutline is returned for glyphs without a vector outline
	// (bitmap, SVG or color glyphs, or indices out of range).
	ErrNoOutline = errors.New("raster: glyph has no outline")

	// ErrInvalidSize is returned for non-positive sizes and for glyphs
	// whose bitmap would exceed MaxGlyphDim in either direction.
	ErrInvalidSize = errors.New("raster: invalid glyph size")

	// ErrForeignDescriptor is returned when a descriptor was made by
	// another source.
	ErrForeignDescriptor = errors.New("raster: descriptor belongs to another source")
)
