package glyphcache

// GlyphIndex identifies a glyph within a font.
type GlyphIndex uint32

// Bitmap is a rendered glyph owned by the cache once inserted.
//
// AllocatedSize must report the real size of the allocation backing the
// bitmap (for a byte slice, its capacity), not the logical pixel count;
// the cache's byte budget is only as accurate as this value.
//
// Release is called exactly once by the cache when the bitmap leaves it:
// on eviction of its group, on Clear, or when a later Add overwrites the
// same glyph index. After Release the cache never touches the bitmap again.
type Bitmap interface {
	AllocatedSize() int
	Release()
}
