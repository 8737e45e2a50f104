// Command glyphdemo renders a few lines of text through one glyph cache
// and prints the cache statistics.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/raster"
	"github.com/gogpu/glyphcache/text"
)

var lines = []string{
	"The quick brown fox jumps over the lazy dog",
	"Glyph groups are evicted least recently used first",
	"Ελληνικά και English στην ίδια γραμμή",
	"שלום עולם and hello world",
}

func main() {
	var (
		width  = flag.Int("width", 900, "image width")
		output = flag.String("output", "glyphdemo.png", "output file")
		budget = flag.Int64("budget", 64<<10, "glyph cache budget in bytes")
		passes = flag.Int("passes", 3, "times the text is drawn")
	)
	flag.Parse()

	regular, err := raster.LoadSource(goregular.TTF)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	bold, err := raster.LoadSource(gobold.TTF)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	c, err := glyphcache.New[raster.Descriptor, *raster.Glyph](*budget)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	r := text.NewRenderer(c)

	faces := []text.Face{
		text.NewFace(regular, 14, raster.ModeGray),
		text.NewFace(regular, 22, raster.ModeGray),
		text.NewFace(bold, 18, raster.ModeGray),
		text.NewFace(regular, 16, raster.ModeMono),
	}

	lineHeight := 34
	height := lineHeight*len(faces)*len(lines) + lineHeight
	dst := image.NewRGBA(image.Rect(0, 0, *width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{0xf8, 0xf6, 0xf0, 0xff}), image.Point{}, draw.Src)
	ink := image.NewUniform(color.RGBA{0x20, 0x24, 0x30, 0xff})

	for range *passes {
		y := lineHeight
		for _, face := range faces {
			for _, line := range lines {
				dot := fixed.P(16, y)
				if err := r.Draw(dst, face, line, dot, ink); err != nil {
					log.Fatalf("Failed to draw %q: %v", line, err)
				}
				y += lineHeight
			}
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, height)

	st := c.Stats()
	fmt.Printf("hits %d  misses %d  hit rate %.1f%%\n", st.Hits, st.Misses, st.HitRate())
	fmt.Printf("groups %d  bytes %d / %d  peak %d\n", st.Groups, st.Bytes, st.Budget, st.PeakBytes)
	fmt.Printf("evicted %d groups (%d glyphs, %d bytes)  busy skips %d  uncached %d\n",
		st.EvictedGroups, st.EvictedGlyphs, st.EvictedBytes, st.BusySkips, r.Uncached())
	for _, g := range c.Groups() {
		fmt.Printf("  %s  %4d glyphs  %7d bytes\n", g.Descriptor, g.Glyphs, g.Bytes)
	}
}
