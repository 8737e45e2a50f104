package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/internal/cache"
)

// DefaultRunCacheSize is the number of shaped runs a Shaper keeps.
const DefaultRunCacheSize = 1024

// ShapedGlyph is a glyph positioned relative to the start of its run.
type ShapedGlyph struct {
	GID glyphcache.GlyphIndex

	// Cluster is the index of the first rune of the glyph's cluster,
	// relative to the start of the run.
	Cluster int

	// Advance moves the pen to the next glyph. Offsets are applied to the
	// pen position before drawing, with Y growing up.
	Advance fixed.Int26_6
	XOffset fixed.Int26_6
	YOffset fixed.Int26_6
}

// runKey identifies a shaped run in the run cache.
type runKey struct {
	font   uint64
	size   fixed.Int26_6
	dir    di.Direction
	script language.Script
	text   string
}

// Shaper turns runs of text into positioned glyphs with HarfBuzz shaping
// from go-text/typesetting, and keeps recently shaped runs.
//
// Shaper is safe for concurrent use. HarfbuzzShaper is not, so shapers are
// pooled, and faces are borrowed from the raster.Source.
type Shaper struct {
	shapers sync.Pool // *shaping.HarfbuzzShaper

	runs *cache.Cache[runKey, []ShapedGlyph]
	lang language.Language
}

// NewShaper returns a shaper keeping up to runCacheSize shaped runs.
// A size of 0 disables run caching.
func NewShaper(runCacheSize int) *Shaper {
	s := &Shaper{
		lang: language.NewLanguage("en"),
	}
	s.shapers.New = func() any { return &shaping.HarfbuzzShaper{} }
	if runCacheSize > 0 {
		s.runs = cache.New[runKey, []ShapedGlyph](runCacheSize)
	}
	return s
}

// Shape shapes text[run.Start:run.End] with face. The returned slice is
// shared with the run cache and must not be modified.
func (s *Shaper) Shape(text []rune, run Run, face Face) []ShapedGlyph {
	if run.Len() <= 0 {
		return nil
	}

	size := face.Descriptor().Size
	key := runKey{
		font:   face.Source.ID(),
		size:   size,
		dir:    run.Direction,
		script: run.Script,
		text:   string(text[run.Start:run.End]),
	}
	if s.runs != nil {
		if glyphs, ok := s.runs.Get(key); ok {
			return glyphs
		}
	}

	f := face.Source.AcquireFace()
	hb := s.shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(shaping.Input{
		Text:      text,
		RunStart:  run.Start,
		RunEnd:    run.End,
		Direction: run.Direction,
		Face:      f,
		Size:      size,
		Script:    run.Script,
		Language:  s.lang,
	})
	s.shapers.Put(hb)
	face.Source.ReleaseFace(f)

	glyphs := make([]ShapedGlyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = ShapedGlyph{
			GID:     glyphcache.GlyphIndex(g.GlyphID),
			Cluster: g.ClusterIndex - run.Start,
			Advance: g.Advance,
			XOffset: g.XOffset,
			YOffset: g.YOffset,
		}
	}
	if s.runs != nil {
		s.runs.Set(key, glyphs)
	}
	return glyphs
}

// RunStats are the statistics of a Shaper's run cache.
type RunStats = cache.Stats

// RunCacheStats returns the statistics of the shaped-run cache.
func (s *Shaper) RunCacheStats() RunStats {
	if s.runs == nil {
		return RunStats{}
	}
	return s.runs.Stats()
}

// ClearRuns drops every cached shaped run.
func (s *Shaper) ClearRuns() {
	if s.runs != nil {
		s.runs.Clear()
	}
}
