package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/math/fixed"
)

// Glyph is a rasterized glyph bitmap.
//
// Pix holds Height rows of Pitch bytes. The bitmap's top-left pixel sits
// Left pixels right of the pen position and Top pixels above the
// baseline. Glyphs are read-only once created; the cache owns them after
// insertion and calls Release when it drops them.
type Glyph struct {
	Pix    []byte
	Width  int
	Height int
	Pitch  int
	Mode   Mode

	Left int
	Top  int

	// Advance is the horizontal pen advance.
	Advance fixed.Int26_6
}

// AllocatedSize returns the capacity of the pixel buffer.
func (g *Glyph) AllocatedSize() int {
	return cap(g.Pix)
}

// Release returns the pixel buffer to the pool. The glyph must not be
// drawn afterwards. Calling Release more than once is harmless.
func (g *Glyph) Release() {
	if g.Pix == nil {
		return
	}
	putBuffer(g.Pix)
	g.Pix = nil
}

// Empty reports whether the glyph has no pixels (a space, for instance).
func (g *Glyph) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Bounds returns the bitmap rectangle relative to the pen position on the
// baseline, with y growing downwards.
func (g *Glyph) Bounds() image.Rectangle {
	return image.Rect(g.Left, -g.Top, g.Left+g.Width, -g.Top+g.Height)
}

// Mask returns the glyph as an alpha mask laid out in Bounds, suitable
// for draw.DrawMask. The mask shares the glyph's pixels.
func (g *Glyph) Mask() image.Image {
	if g.Mode == ModeMono {
		return &monoMask{g: g, rect: g.Bounds()}
	}
	return &image.Alpha{Pix: g.Pix, Stride: g.Pitch, Rect: g.Bounds()}
}

// monoMask exposes a 1-bit glyph as an image.Image.
type monoMask struct {
	g    *Glyph
	rect image.Rectangle
}

func (m *monoMask) ColorModel() color.Model { return color.AlphaModel }

func (m *monoMask) Bounds() image.Rectangle { return m.rect }

func (m *monoMask) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.rect)) {
		return color.Alpha{}
	}
	x -= m.rect.Min.X
	y -= m.rect.Min.Y
	if m.g.Pix[y*m.g.Pitch+x/8]&(0x80>>uint(x%8)) != 0 {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
