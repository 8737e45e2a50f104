package raster

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/glyphcache"
)

// MaxGlyphDim bounds the width and height of a rasterized glyph in pixels.
const MaxGlyphDim = 4096

// Source is a parsed font file.
//
// Source is safe for concurrent use. Parsed fonts are shared read-only;
// the per-call font faces and scanline rasterizers, which are not safe
// for concurrent use, are pooled.
type Source struct {
	id      uint64
	font    *font.Font
	desc    font.Description
	upem    float32
	faces   sync.Pool // *font.Face
	rasters sync.Pool // *vector.Rasterizer
}

// LoadSource parses a TrueType or OpenType font. The source ID is a hash
// of data, so loading the same file twice yields equal descriptors.
func LoadSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: failed to parse font: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write(data)

	s := &Source{
		id:   h.Sum64(),
		font: face.Font,
		desc: face.Font.Describe(),
		upem: float32(face.Font.Upem()),
	}
	s.faces.New = func() any { return font.NewFace(s.font) }
	s.rasters.New = func() any { return vector.NewRasterizer(0, 0) }
	s.faces.Put(face)
	return s, nil
}

// ID returns the identifier stored in descriptors made by this source.
func (s *Source) ID() uint64 { return s.id }

// Family returns the font family name.
func (s *Source) Family() string { return s.desc.Family }

// Aspect returns the style, weight and stretch of the font.
func (s *Source) Aspect() font.Aspect { return s.desc.Aspect }

// Font returns the parsed font. It is read-only and safe for concurrent use.
func (s *Source) Font() *font.Font { return s.font }

// Descriptor returns the descriptor for this font at size pixels per em.
func (s *Source) Descriptor(size float64, mode Mode) Descriptor {
	return Descriptor{
		Font:   s.id,
		Size:   fixed.Int26_6(math.Round(size * 64)),
		Aspect: s.desc.Aspect,
		Mode:   mode,
	}
}

// AcquireFace borrows a face of the font from the source's pool. Faces
// are not safe for concurrent use; hand it back with ReleaseFace.
func (s *Source) AcquireFace() *font.Face {
	return s.faces.Get().(*font.Face)
}

// ReleaseFace returns a face taken with AcquireFace.
func (s *Source) ReleaseFace(f *font.Face) {
	if f != nil && f.Font == s.font {
		s.faces.Put(f)
	}
}

// GlyphIndex returns the glyph mapped to r by the font's cmap.
func (s *Source) GlyphIndex(r rune) (glyphcache.GlyphIndex, bool) {
	gid, ok := s.font.Cmap.Lookup(r)
	return glyphcache.GlyphIndex(gid), ok
}

// Rasterize renders glyph gid as described by d.
// Glyphs without ink (spaces) yield an empty Glyph with only an advance.
func (s *Source) Rasterize(d Descriptor, gid glyphcache.GlyphIndex) (*Glyph, error) {
	if d.Font != s.id {
		return nil, ErrForeignDescriptor
	}
	if d.Size <= 0 {
		return nil, fmt.Errorf("%w: size %v", ErrInvalidSize, d.Size)
	}

	face := s.AcquireFace()
	defer s.ReleaseFace(face)

	outline, ok := face.GlyphData(font.GID(gid)).(font.GlyphOutline)
	if !ok {
		return nil, fmt.Errorf("%w: glyph %d", ErrNoOutline, gid)
	}

	scale := float32(d.Size) / 64 / s.upem
	g := &Glyph{
		Mode:    d.Mode,
		Advance: fixed.Int26_6(math.Round(float64(face.HorizontalAdvance(font.GID(gid)) * scale * 64))),
	}
	if len(outline.Segments) == 0 {
		return g, nil
	}

	minX, minY, maxX, maxY := outlineBounds(outline.Segments)
	x0 := int(math.Floor(float64(minX * scale)))
	x1 := int(math.Ceil(float64(maxX * scale)))
	y0 := int(math.Floor(float64(minY * scale)))
	y1 := int(math.Ceil(float64(maxY * scale)))
	w, h := x1-x0, y1-y0
	if w > MaxGlyphDim || h > MaxGlyphDim {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrInvalidSize, w, h)
	}
	if w <= 0 || h <= 0 {
		return g, nil
	}

	z := s.rasters.Get().(*vector.Rasterizer)
	defer s.rasters.Put(z)
	z.Reset(w, h)
	z.DrawOp = draw.Src

	// Font units grow upwards, pixels downwards.
	px := func(p font.SegmentPoint) (float32, float32) {
		return p.X*scale - float32(x0), float32(y1) - p.Y*scale
	}
	started := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if started {
				z.ClosePath()
			}
			z.MoveTo(px(seg.Args[0]))
			started = true
		case ot.SegmentOpLineTo:
			z.LineTo(px(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			dx, dy := px(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		z.ClosePath()
	}

	g.Width, g.Height = w, h
	g.Left, g.Top = x0, y1

	switch d.Mode {
	case ModeMono:
		coverage := getBuffer(w * h)
		z.Draw(&image.Alpha{Pix: coverage, Stride: w, Rect: image.Rect(0, 0, w, h)},
			image.Rect(0, 0, w, h), image.Opaque, image.Point{})
		g.Pitch = (w + 7) / 8
		g.Pix = getBuffer(g.Pitch * h)
		packMono(g.Pix, g.Pitch, coverage, w, h)
		putBuffer(coverage)
	default:
		g.Pitch = w
		g.Pix = getBuffer(w * h)
		z.Draw(&image.Alpha{Pix: g.Pix, Stride: w, Rect: image.Rect(0, 0, w, h)},
			image.Rect(0, 0, w, h), image.Opaque, image.Point{})
	}
	return g, nil
}

// outlineBounds returns the box around every point of the outline,
// control points included, in font units.
func outlineBounds(segs []font.Segment) (minX, minY, maxX, maxY float32) {
	minX, minY = math.MaxFloat32, math.MaxFloat32
	maxX, maxY = -math.MaxFloat32, -math.MaxFloat32
	for i := range segs {
		for _, p := range segs[i].ArgsSlice() {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
	}
	return minX, minY, maxX, maxY
}

// packMono thresholds 8-bit coverage at 50% into 1-bit rows.
func packMono(dst []byte, pitch int, coverage []byte, w, h int) {
	for y := 0; y < h; y++ {
		row := coverage[y*w : (y+1)*w]
		out := dst[y*pitch : (y+1)*pitch]
		for x, a := range row {
			if a >= 0x80 {
				out[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
}
