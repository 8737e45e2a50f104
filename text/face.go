package text

import (
	"fmt"

	"github.com/gogpu/glyphcache/raster"
)

// Face is a font source at a specific size and pixel mode.
// It is a small value, cheap to create and copy.
type Face struct {
	Source *raster.Source
	Size   float64
	Mode   raster.Mode
}

// NewFace returns a face of src at size pixels per em.
func NewFace(src *raster.Source, size float64, mode raster.Mode) Face {
	return Face{Source: src, Size: size, Mode: mode}
}

// Descriptor returns the cache key of the face's glyphs.
func (f Face) Descriptor() raster.Descriptor {
	return f.Source.Descriptor(f.Size, f.Mode)
}

func (f Face) validate() error {
	if f.Source == nil {
		return ErrNilSource
	}
	if !(f.Size > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSize, f.Size)
	}
	return nil
}
