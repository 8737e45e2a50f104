package text

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync/atomic"

	"github.com/go-text/typesetting/di"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/raster"
)

// GlyphCache is the cache a Renderer draws from.
type GlyphCache = glyphcache.Cache[raster.Descriptor, *raster.Glyph]

// maxPinAttempts bounds how often a renderer retries to hold its glyph
// group busy when other renderers keep evicting it. After that it draws
// without the cache.
const maxPinAttempts = 4

// Renderer draws text with glyphs from a shared GlyphCache.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	cache  *GlyphCache
	shaper *Shaper
	dir    di.Direction
	logger *slog.Logger

	uncached atomic.Uint64
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithShaper sets the shaper. By default each renderer has its own with
// a run cache of DefaultRunCacheSize.
func WithShaper(s *Shaper) RendererOption {
	return func(r *Renderer) {
		r.shaper = s
	}
}

// WithDirection sets the base paragraph direction (default LTR).
func WithDirection(d di.Direction) RendererOption {
	return func(r *Renderer) {
		r.dir = d
	}
}

// WithRendererLogger sets the logger, overriding glyphcache.Logger.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = l
	}
}

// NewRenderer returns a renderer drawing from c.
func NewRenderer(c *GlyphCache, opts ...RendererOption) *Renderer {
	r := &Renderer{cache: c, dir: di.DirectionLTR}
	for _, opt := range opts {
		opt(r)
	}
	if r.shaper == nil {
		r.shaper = NewShaper(DefaultRunCacheSize)
	}
	return r
}

// Cache returns the glyph cache.
func (r *Renderer) Cache() *GlyphCache { return r.cache }

// Shaper returns the shaper.
func (r *Renderer) Shaper() *Shaper { return r.shaper }

// Uncached returns how many glyphs were drawn without the cache because
// their group could not be held busy.
func (r *Renderer) Uncached() uint64 { return r.uncached.Load() }

// Draw draws s onto dst with its baseline starting at dot, filling the
// glyph coverage with src.
func (r *Renderer) Draw(dst draw.Image, face Face, s string, dot fixed.Point26_6, src image.Image) error {
	_, err := r.walk(face, s, dot, func(g *raster.Glyph, at image.Point) {
		b := g.Bounds().Add(at)
		draw.DrawMask(dst, b, src, b.Min, g.Mask(), b.Min.Sub(at), draw.Over)
	})
	return err
}

// Measure returns the advance of s and the bounds of its ink relative to
// the start of the baseline. It goes through the cache like Draw.
func (r *Renderer) Measure(face Face, s string) (fixed.Int26_6, image.Rectangle, error) {
	var ink image.Rectangle
	end, err := r.walk(face, s, fixed.Point26_6{}, func(g *raster.Glyph, at image.Point) {
		ink = ink.Union(g.Bounds().Add(at))
	})
	if err != nil {
		return 0, image.Rectangle{}, err
	}
	return end.X, ink, nil
}

// walk lays out s from dot and calls fn with every glyph that has ink and
// the pixel position of its origin. It returns the final pen position.
func (r *Renderer) walk(face Face, s string, dot fixed.Point26_6, fn func(*raster.Glyph, image.Point)) (fixed.Point26_6, error) {
	if err := face.validate(); err != nil {
		return dot, err
	}
	text := []rune(s)
	ses := &session{r: r, face: face, desc: face.Descriptor()}
	defer ses.close()

	pen := dot
	for _, run := range Segment(text, r.dir) {
		for _, sg := range r.shaper.Shape(text, run, face) {
			g, owned, err := ses.glyph(sg.GID)
			if err != nil {
				return pen, err
			}
			if !g.Empty() {
				fn(g, image.Point{
					X: (pen.X + sg.XOffset).Round(),
					Y: (pen.Y - sg.YOffset).Round(),
				})
			}
			if owned {
				g.Release()
			}
			pen.X += sg.Advance
		}
	}
	return pen, nil
}

// session is one Draw or Measure call. It holds the face's glyph group
// busy from the first glyph until close.
type session struct {
	r      *Renderer
	face   Face
	desc   raster.Descriptor
	pinned *glyphcache.Handle
	failed bool
}

func (s *session) close() {
	if s.pinned != nil && !s.pinned.Retired() {
		s.pinned.Done()
	}
	s.pinned = nil
}

// glyph returns the bitmap of gid and whether the caller owns it. An
// owned bitmap is not in the cache; the caller releases it after use.
func (s *session) glyph(gid glyphcache.GlyphIndex) (*raster.Glyph, bool, error) {
	if s.failed {
		return s.rasterize(gid)
	}

	c := s.r.cache
	for attempt := 0; attempt < maxPinAttempts; attempt++ {
		g, h, ok := c.Lookup(s.desc, gid)
		if !ok {
			fresh, err := s.face.Source.Rasterize(s.desc, gid)
			if err != nil {
				return nil, false, err
			}
			actual, ah, loaded, err := c.LoadOrAdd(s.desc, gid, fresh)
			if err != nil {
				fresh.Release()
				return nil, false, fmt.Errorf("text: caching glyph %d: %w", gid, err)
			}
			if loaded {
				fresh.Release()
			}
			g, h = actual, ah
		}

		if s.pinned != nil {
			if h == s.pinned {
				return g, false, nil
			}
			// The group was replaced while held busy, which only Clear
			// does. Draw the rest of the session uncached.
			s.failed = true
			return s.rasterize(gid)
		}

		// g is valid only if its group was still alive when pinned.
		if h.MarkBusy() {
			s.pinned = h
			return g, false, nil
		}
	}

	s.failed = true
	s.r.log().Debug("glyph group kept being evicted, drawing uncached",
		"descriptor", s.desc, "attempts", maxPinAttempts)
	return s.rasterize(gid)
}

func (s *session) rasterize(gid glyphcache.GlyphIndex) (*raster.Glyph, bool, error) {
	g, err := s.face.Source.Rasterize(s.desc, gid)
	if err != nil {
		return nil, false, err
	}
	s.r.uncached.Add(1)
	return g, true, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return glyphcache.Logger()
}
