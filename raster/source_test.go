package raster

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphcache"
)

func loadGoRegular(t testing.TB) *Source {
	t.Helper()
	src, err := LoadSource(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	return src
}

func glyphOf(t testing.TB, src *Source, r rune) glyphcache.GlyphIndex {
	t.Helper()
	gid, ok := src.GlyphIndex(r)
	if !ok {
		t.Fatalf("no glyph for %q", r)
	}
	return gid
}

func TestLoadSource(t *testing.T) {
	src := loadGoRegular(t)

	if !strings.HasPrefix(src.Family(), "Go") {
		t.Errorf("Family() = %q, want the Go family", src.Family())
	}
	if src.Font() == nil {
		t.Error("Font() returned nil")
	}

	again := loadGoRegular(t)
	if src.ID() != again.ID() {
		t.Errorf("same data gave IDs %x and %x", src.ID(), again.ID())
	}

	bold, err := LoadSource(gobold.TTF)
	if err != nil {
		t.Fatalf("LoadSource(gobold): %v", err)
	}
	if bold.ID() == src.ID() {
		t.Error("different fonts share an ID")
	}
	if bold.Descriptor(16, ModeGray) == src.Descriptor(16, ModeGray) {
		t.Error("different fonts share a descriptor")
	}
}

func TestLoadSourceErrors(t *testing.T) {
	if _, err := LoadSource(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("LoadSource(nil) error = %v, want ErrEmptyFontData", err)
	}
	if _, err := LoadSource([]byte("not a font")); err == nil {
		t.Error("LoadSource(garbage) succeeded")
	}
}

func TestDescriptorFromSource(t *testing.T) {
	src := loadGoRegular(t)

	d := src.Descriptor(12.5, ModeMono)
	if d.Font != src.ID() {
		t.Errorf("Font = %x, want %x", d.Font, src.ID())
	}
	if d.Size != 800 {
		t.Errorf("Size = %d, want 800 (12.5px in 26.6)", d.Size)
	}
	if d.Mode != ModeMono {
		t.Errorf("Mode = %v, want mono", d.Mode)
	}
	if src.Descriptor(12.5, ModeMono) != d {
		t.Error("descriptors are not stable")
	}
}

func TestRasterizeGray(t *testing.T) {
	src := loadGoRegular(t)
	d := src.Descriptor(32, ModeGray)

	g, err := src.Rasterize(d, glyphOf(t, src, 'H'))
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	defer g.Release()

	if g.Empty() {
		t.Fatal("glyph H is empty")
	}
	if g.Pitch != g.Width {
		t.Errorf("Pitch = %d, want width %d", g.Pitch, g.Width)
	}
	if len(g.Pix) != g.Pitch*g.Height {
		t.Errorf("len(Pix) = %d, want %d", len(g.Pix), g.Pitch*g.Height)
	}
	if g.AllocatedSize() < len(g.Pix) {
		t.Errorf("AllocatedSize() = %d, below len(Pix) %d", g.AllocatedSize(), len(g.Pix))
	}
	// A cap-height glyph at 32px sits above the baseline.
	if g.Top <= 0 || g.Top > 32 {
		t.Errorf("Top = %d, want within (0, 32]", g.Top)
	}
	if g.Advance <= 0 {
		t.Errorf("Advance = %v, want > 0", g.Advance)
	}

	var full, ink int
	for _, a := range g.Pix {
		if a == 0xff {
			full++
		}
		if a != 0 {
			ink++
		}
	}
	if full == 0 {
		t.Error("H has no fully covered pixel")
	}
	if ink == len(g.Pix) {
		t.Error("H covers its whole box")
	}
}

func TestRasterizeMono(t *testing.T) {
	src := loadGoRegular(t)

	gray, err := src.Rasterize(src.Descriptor(24, ModeGray), glyphOf(t, src, 'o'))
	if err != nil {
		t.Fatalf("Rasterize(gray): %v", err)
	}
	defer gray.Release()

	mono, err := src.Rasterize(src.Descriptor(24, ModeMono), glyphOf(t, src, 'o'))
	if err != nil {
		t.Fatalf("Rasterize(mono): %v", err)
	}
	defer mono.Release()

	if mono.Width != gray.Width || mono.Height != gray.Height {
		t.Fatalf("mono is %dx%d, gray is %dx%d", mono.Width, mono.Height, gray.Width, gray.Height)
	}
	if want := (mono.Width + 7) / 8; mono.Pitch != want {
		t.Errorf("Pitch = %d, want %d", mono.Pitch, want)
	}

	m := mono.Mask()
	b := m.Bounds()
	for y := 0; y < mono.Height; y++ {
		for x := 0; x < mono.Width; x++ {
			_, _, _, a := m.At(b.Min.X+x, b.Min.Y+y).RGBA()
			on := a != 0
			want := gray.Pix[y*gray.Pitch+x] >= 0x80
			if on != want {
				t.Fatalf("pixel (%d,%d): mono %v, gray coverage %d", x, y, on, gray.Pix[y*gray.Pitch+x])
			}
		}
	}
}

func TestRasterizeSpace(t *testing.T) {
	src := loadGoRegular(t)

	g, err := src.Rasterize(src.Descriptor(16, ModeGray), glyphOf(t, src, ' '))
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !g.Empty() {
		t.Errorf("space is %dx%d, want empty", g.Width, g.Height)
	}
	if g.AllocatedSize() != 0 {
		t.Errorf("AllocatedSize() = %d, want 0", g.AllocatedSize())
	}
	if g.Advance <= 0 {
		t.Errorf("Advance = %v, want > 0", g.Advance)
	}
	g.Release()
}

func TestRasterizeErrors(t *testing.T) {
	src := loadGoRegular(t)
	gid := glyphOf(t, src, 'a')

	foreign := src.Descriptor(16, ModeGray)
	foreign.Font++
	if _, err := src.Rasterize(foreign, gid); !errors.Is(err, ErrForeignDescriptor) {
		t.Errorf("foreign descriptor: error = %v, want ErrForeignDescriptor", err)
	}

	if _, err := src.Rasterize(src.Descriptor(0, ModeGray), gid); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero size: error = %v, want ErrInvalidSize", err)
	}

	if _, err := src.Rasterize(src.Descriptor(20000, ModeGray), gid); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("huge size: error = %v, want ErrInvalidSize", err)
	}
}

func TestRasterizeScalesWithSize(t *testing.T) {
	src := loadGoRegular(t)
	gid := glyphOf(t, src, 'M')

	small, err := src.Rasterize(src.Descriptor(12, ModeGray), gid)
	if err != nil {
		t.Fatal(err)
	}
	defer small.Release()
	large, err := src.Rasterize(src.Descriptor(48, ModeGray), gid)
	if err != nil {
		t.Fatal(err)
	}
	defer large.Release()

	if large.Width < 3*small.Width || large.Height < 3*small.Height {
		t.Errorf("48px M is %dx%d, 12px M is %dx%d", large.Width, large.Height, small.Width, small.Height)
	}
	if large.Advance < 3*small.Advance {
		t.Errorf("advances %v and %v do not scale", small.Advance, large.Advance)
	}
}

func TestRasterizeConcurrent(t *testing.T) {
	src := loadGoRegular(t)
	d := src.Descriptor(20, ModeGray)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 'a'; r <= 'z'; r++ {
				gid, ok := src.GlyphIndex(r)
				if !ok {
					t.Errorf("no glyph for %q", r)
					return
				}
				g, err := src.Rasterize(d, gid)
				if err != nil {
					t.Errorf("worker %d: Rasterize(%q): %v", w, r, err)
					return
				}
				g.Release()
			}
		}(w)
	}
	wg.Wait()
}

func TestAcquireFace(t *testing.T) {
	src := loadGoRegular(t)
	bold, err := LoadSource(gobold.TTF)
	if err != nil {
		t.Fatal(err)
	}

	f := src.AcquireFace()
	if f == nil || f.Font != src.Font() {
		t.Fatal("AcquireFace returned a face of another font")
	}
	gid := glyphOf(t, src, 'H')
	if adv := f.HorizontalAdvance(font.GID(gid)); adv <= 0 {
		t.Errorf("HorizontalAdvance = %v", adv)
	}
	src.ReleaseFace(f)

	// A face of another source is not taken into the pool.
	src.ReleaseFace(bold.AcquireFace())
	src.ReleaseFace(nil)
	for range 8 {
		g := src.AcquireFace()
		if g.Font != src.Font() {
			t.Fatal("pool handed out a face of another font")
		}
		defer src.ReleaseFace(g)
	}
}

func TestAcquireFaceConcurrent(t *testing.T) {
	src := loadGoRegular(t)
	gid := glyphOf(t, src, 'W')
	want := src.AcquireFace().HorizontalAdvance(font.GID(gid))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				f := src.AcquireFace()
				if got := f.HorizontalAdvance(font.GID(gid)); got != want {
					t.Errorf("HorizontalAdvance = %v, want %v", got, want)
				}
				src.ReleaseFace(f)
			}
		}()
	}
	wg.Wait()
}
