package text

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/raster"
)

func newTestRenderer(t testing.TB, budget int64, opts ...RendererOption) *Renderer {
	t.Helper()
	c, err := glyphcache.New[raster.Descriptor, *raster.Glyph](budget)
	if err != nil {
		t.Fatalf("glyphcache.New: %v", err)
	}
	return NewRenderer(c, opts...)
}

func inkPixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestRendererDraw(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 24)

	img := image.NewRGBA(image.Rect(0, 0, 200, 40))
	if err := r.Draw(img, face, "Hello", fixed.P(4, 30), image.Black); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if inkPixels(img) == 0 {
		t.Fatal("Draw left the image blank")
	}

	c := r.Cache()
	if !c.Contains(face.Descriptor()) {
		t.Fatal("face group not cached")
	}
	groups := c.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	// H, e, l, o: the second l is a hit.
	if groups[0].Glyphs != 4 {
		t.Errorf("group holds %d glyphs, want 4", groups[0].Glyphs)
	}
	if groups[0].Busy {
		t.Error("group still busy after Draw")
	}
	if c.Bytes() == 0 || c.Bytes() != groups[0].Bytes {
		t.Errorf("Bytes() = %d, group bytes %d", c.Bytes(), groups[0].Bytes)
	}
}

func TestRendererSecondDrawHitsCache(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 18)
	img := image.NewRGBA(image.Rect(0, 0, 300, 40))

	if err := r.Draw(img, face, "glyph cache", fixed.P(0, 30), image.Black); err != nil {
		t.Fatal(err)
	}
	before := r.Cache().Stats()
	if err := r.Draw(img, face, "glyph cache", fixed.P(0, 30), image.Black); err != nil {
		t.Fatal(err)
	}
	after := r.Cache().Stats()

	if after.Insertions != before.Insertions {
		t.Errorf("second draw inserted %d glyphs", after.Insertions-before.Insertions)
	}
	if after.Hits-before.Hits != 11 {
		t.Errorf("second draw hits = %d, want 11", after.Hits-before.Hits)
	}
}

func TestRendererSameImageCachedOrNot(t *testing.T) {
	face := loadFace(t, 20)

	cached := newTestRenderer(t, 1<<20)
	a := image.NewRGBA(image.Rect(0, 0, 240, 32))
	for range 2 {
		if err := cached.Draw(a, face, "Same pixels", fixed.P(2, 24), image.Black); err != nil {
			t.Fatal(err)
		}
	}

	// Same text through a cache that evicts on every insertion.
	fresh := newTestRenderer(t, 0)
	b := image.NewRGBA(image.Rect(0, 0, 240, 32))
	for range 2 {
		if err := fresh.Draw(b, face, "Same pixels", fixed.P(2, 24), image.Black); err != nil {
			t.Fatal(err)
		}
	}

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("cached and uncached renders differ")
	}
}

func TestRendererZeroBudgetKeepsOnlyBusyGroup(t *testing.T) {
	r := newTestRenderer(t, 0)
	face := loadFace(t, 16)
	other := face
	other.Size = 30

	if _, _, err := r.Measure(face, "abc"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Measure(other, "abc"); err != nil {
		t.Fatal(err)
	}

	c := r.Cache()
	if c.Contains(face.Descriptor()) {
		t.Error("idle group survived a zero budget")
	}
	if !c.Contains(other.Descriptor()) {
		t.Error("last group evicted while it was being drawn")
	}
}

func TestRendererMeasure(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 20)

	adv, ink, err := r.Measure(face, "Hi there")
	if err != nil {
		t.Fatal(err)
	}
	if adv <= 0 {
		t.Errorf("advance = %v", adv)
	}
	if ink.Empty() {
		t.Fatal("no ink")
	}
	if ink.Min.Y >= 0 || ink.Max.Y <= ink.Min.Y {
		t.Errorf("ink %v does not rise above the baseline", ink)
	}
	if ink.Max.X > adv.Ceil()+2 {
		t.Errorf("ink %v extends past advance %v", ink, adv)
	}

	spaceAdv, spaceInk, err := r.Measure(face, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if spaceAdv <= 0 || !spaceInk.Empty() {
		t.Errorf("spaces: advance %v ink %v", spaceAdv, spaceInk)
	}
}

func TestRendererInvalidFace(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	if err := r.Draw(img, Face{Size: 12}, "x", fixed.P(0, 8), image.Black); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source: error = %v, want ErrNilSource", err)
	}
	face := loadFace(t, 0)
	if _, _, err := r.Measure(face, "x"); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero size: error = %v, want ErrInvalidSize", err)
	}
}

func TestRendererMonoFace(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 16)
	face.Mode = raster.ModeMono

	img, err := r.RenderImage(face, "mono", color.Black, color.White, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if v := img.Pix[i]; v != 0 && v != 0xff {
			t.Fatalf("mono render has gray level %d", v)
		}
	}
}

func TestRenderImage(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 24)

	img, err := r.RenderImage(face, "Go", color.Black, color.White, 3)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() < 20 || b.Dy() < 18 {
		t.Fatalf("image is %v", b)
	}

	// The padding stays background.
	for x := b.Min.X; x < b.Max.X; x++ {
		if c := img.RGBAAt(x, 0); c != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
			t.Fatalf("pixel (%d,0) = %v, want white", x, c)
		}
	}
	dark := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 0x80 {
			dark++
		}
	}
	if dark == 0 {
		t.Error("no dark pixels")
	}
}

func TestRendererConcurrent(t *testing.T) {
	// Small enough that renderers keep evicting each other's groups.
	r := newTestRenderer(t, 8<<10)
	src := loadFace(t, 12).Source

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			face := NewFace(src, float64(10+w*3), raster.ModeGray)
			img := image.NewRGBA(image.Rect(0, 0, 400, 60))
			for i := 0; i < 20; i++ {
				if err := r.Draw(img, face, "The quick brown fox", fixed.P(0, 40), image.Black); err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, g := range r.Cache().Groups() {
		if g.Busy {
			t.Errorf("group %v left busy", g.Descriptor)
		}
	}
}

func TestRendererFallsBackAfterClear(t *testing.T) {
	r := newTestRenderer(t, 1<<20)
	face := loadFace(t, 16)

	ses := &session{r: r, face: face, desc: face.Descriptor()}
	gid, _ := face.Source.GlyphIndex('a')
	if _, owned, err := ses.glyph(gid); err != nil || owned {
		t.Fatalf("first glyph: owned %v, err %v", owned, err)
	}

	// Simulate a group replaced under a held mark.
	r.Cache().Clear()
	gid, _ = face.Source.GlyphIndex('b')
	g, owned, err := ses.glyph(gid)
	if err != nil {
		t.Fatal(err)
	}
	if !owned {
		t.Error("glyph from a replaced group was not drawn uncached")
	}
	g.Release()
	ses.close()

	if r.Uncached() != 1 {
		t.Errorf("Uncached() = %d, want 1", r.Uncached())
	}
}

func TestRendererOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newTestRenderer(t, 1<<20, WithRendererLogger(logger), WithShaper(NewShaper(4)))

	if r.Shaper().RunCacheStats().Capacity != 4 {
		t.Error("WithShaper ignored")
	}
	if r.log() != logger {
		t.Error("WithRendererLogger ignored")
	}
}
