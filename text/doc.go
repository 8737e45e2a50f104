// Package text draws strings with glyphs from a glyph cache.
//
// The pipeline has three stages:
//
//   - Segmenting: text is split into runs of one direction and one script
//     (golang.org/x/text/unicode/bidi)
//   - Shaping: each run becomes positioned glyphs
//     (github.com/go-text/typesetting/shaping)
//   - Rendering: glyph bitmaps come from a [glyphcache.Cache] and are
//     composited onto the destination image
//
// # Example usage
//
//	src, err := raster.LoadSource(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, _ := glyphcache.New[raster.Descriptor, *raster.Glyph](4 << 20)
//	r := text.NewRenderer(c)
//
//	face := text.NewFace(src, 24, raster.ModeGray)
//	img := image.NewRGBA(image.Rect(0, 0, 320, 48))
//	err = r.Draw(img, face, "Hello, glyphs", fixed.P(8, 32), image.Black)
//
// A Renderer holds the glyph group of its face busy while it composites,
// so concurrent renderers sharing one cache never lose bitmaps they are
// drawing.
package text
