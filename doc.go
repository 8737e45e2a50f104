// Package glyphcache provides a bounded in-memory cache for rendered glyph
// bitmaps.
//
// # Overview
//
// Rasterizing a glyph is expensive, drawing a cached one is cheap. A
// [Cache] keeps bitmaps keyed by a font descriptor (face, size, style,
// rendering mode, any comparable value) plus a glyph index, and bounds the
// memory they use with a byte budget shared by every font.
//
// # Quick Start
//
//	import "github.com/gogpu/glyphcache"
//
//	c, err := glyphcache.New[raster.Descriptor, *raster.Glyph](8 << 20)
//	if err != nil {
//	    return err
//	}
//
//	g, h, ok := c.Lookup(desc, gid)
//	if !ok {
//	    g, _ = rasterizer.Rasterize(desc, gid)
//	    h, err = c.Add(desc, gid, g)
//	}
//	if h.MarkBusy() {
//	    draw(g)
//	    h.Done()
//	}
//
// The text package wraps this loop in a renderer.
//
// # Groups and Eviction
//
// Glyphs are grouped by descriptor. Groups are ordered by recency: Lookup
// and Add move the touched group to the front. Eviction works on whole
// groups, never single glyphs, and only runs inside Add: when the cache is
// at or above its budget, groups are released from the least recently used
// end until it is under budget again.
//
// # Busy Groups
//
// Lookup and Add return a [Handle] for the glyph's group. A renderer marks
// the group busy for as long as it reads bitmaps from it; eviction skips
// busy groups, so a cache whose groups are all busy can stay over budget.
// A handle outlives its group: once the group is evicted,
// [Handle.MarkBusy] fails and the caller looks the glyph up again.
//
// # Accounting
//
// Sizes come from [Bitmap.AllocatedSize], which must report the real
// allocation behind a bitmap. The cache releases each bitmap exactly once,
// through [Bitmap.Release], when it is evicted, overwritten or cleared.
//
// # Thread Safety
//
// Cache is safe for concurrent use. One mutex guards the whole cache, and
// every operation is short and non-blocking.
//
// # Logging
//
// glyphcache is silent by default. Use [SetLogger] to receive debug
// records about group creation and eviction.
package glyphcache
