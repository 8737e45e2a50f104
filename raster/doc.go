// Package raster turns font outlines into glyph bitmaps for the glyph cache.
//
// A [Source] is a parsed font file. It produces [Descriptor] values, the
// font identity the cache groups glyphs by, and rasterizes glyphs into
// [Glyph] bitmaps:
//
//	src, err := raster.LoadSource(goregular.TTF)
//	desc := src.Descriptor(16, raster.ModeGray)
//	gid, _ := src.GlyphIndex('g')
//	g, err := src.Rasterize(desc, gid)
//
// Outlines are read with go-text/typesetting and scan-converted with
// golang.org/x/image/vector. Glyph pixel buffers come from a pool of
// power-of-two size classes; [Glyph.AllocatedSize] reports the capacity
// of the buffer, which is what the cache budgets, and [Glyph.Release]
// hands the buffer back to the pool.
package raster
