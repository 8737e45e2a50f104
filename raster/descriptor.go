package raster

import (
	"fmt"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// Mode selects the pixel format of rasterized glyphs.
type Mode uint8

const (
	// ModeGray produces 8-bit coverage, one byte per pixel.
	ModeGray Mode = iota

	// ModeMono produces 1 bit per pixel, most significant bit first,
	// rows padded to whole bytes.
	ModeMono
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeMono:
		return "mono"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode returns the mode named s ("gray" or "mono").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "gray":
		return ModeGray, nil
	case "mono":
		return ModeMono, nil
	default:
		return 0, fmt.Errorf("raster: unknown mode %q", s)
	}
}

// Descriptor identifies one font configuration: every glyph rasterized
// with equal descriptors is identical. It is comparable and is the key
// the glyph cache groups bitmaps by.
type Descriptor struct {
	// Font is the ID of the Source the glyphs come from.
	Font uint64

	// Size is the font size in pixels per em.
	Size fixed.Int26_6

	// Aspect is the style, weight and stretch of the font.
	Aspect font.Aspect

	// Mode is the pixel format.
	Mode Mode
}

// String returns a short description for logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("%016x/%s/%s", d.Font, d.Size, d.Mode)
}
