package glyphcache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/glyphcache/internal/cache"
)

// entry is a cached bitmap with the size it was accounted with.
type entry[B Bitmap] struct {
	bitmap B
	size   int64
}

// fontGroup holds every cached glyph of one font descriptor.
type fontGroup[D comparable, B Bitmap] struct {
	descriptor D
	glyphs     map[GlyphIndex]entry[B]
	bytes      int64
	handle     *Handle

	// node is the group's position in the recency list.
	node *cache.Node[*fontGroup[D, B]]
}

// Cache is a byte-bounded cache of glyph bitmaps, partitioned into groups
// by font descriptor.
//
// Groups are kept in recency order: every Lookup or Add that touches a
// descriptor moves its group to the front. When an Add finds the cache at
// or above its budget, whole groups are evicted from the back until the
// cache is under budget again, skipping groups held busy through their
// [Handle]. The cache may therefore stay over budget when every remaining
// group is busy; this is not an error.
//
// A single mutex guards all state, and no operation blocks on anything
// but that mutex.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[D comparable, B Bitmap] struct {
	mu sync.Mutex

	// index finds a group by descriptor, order ranks groups by recency.
	index map[D]*fontGroup[D, B]
	order *cache.List[*fontGroup[D, B]]

	bytes  int64
	peak   int64
	budget int64

	stats  counters
	logger *slog.Logger
}

// New creates a cache that keeps at most budget bytes of bitmaps,
// as reported by [Bitmap.AllocatedSize]. A zero budget keeps only the
// groups that are busy when the next Add runs.
func New[D comparable, B Bitmap](budget int64, opts ...Option) (*Cache[D, B], error) {
	if budget < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, budget)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[D, B]{
		index:  make(map[D]*fontGroup[D, B], o.groupCapacity),
		order:  cache.NewList[*fontGroup[D, B]](),
		budget: budget,
		logger: o.logger,
	}, nil
}

// Lookup returns the bitmap cached for glyph in the group of d.
//
// If the group exists it becomes the most recently used one, even when the
// glyph itself is missing, and its handle is returned in both cases. If no
// group exists for d, Lookup returns a nil handle.
func (c *Cache[D, B]) Lookup(d D, glyph GlyphIndex) (B, *Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero B
	g, ok := c.index[d]
	if !ok {
		c.stats.misses++
		return zero, nil, false
	}
	c.order.MoveToFront(g.node)

	e, ok := g.glyphs[glyph]
	if !ok {
		c.stats.misses++
		return zero, g.handle, false
	}
	c.stats.hits++
	return e.bitmap, g.handle, true
}

// Add inserts b as the bitmap of glyph in the group of d and returns the
// group's handle. The cache takes ownership of b.
//
// A new group becomes the most recently used one; adding to an existing
// group leaves its place in the recency order unchanged.
//
// If the cache is at or above its budget, groups are evicted first. A
// bitmap already cached under the same glyph index is replaced and
// released. Adding the same bitmap value twice is a caller error.
//
// The only error is [ErrInvalidSize], returned when b reports a negative
// size; b is then left to the caller.
func (c *Cache[D, B]) Add(d D, glyph GlyphIndex, b B) (*Handle, error) {
	size := int64(b.AllocatedSize())
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reclaim()

	g := c.groupFor(d)
	if old, ok := g.glyphs[glyph]; ok {
		c.drop(g, old)
		c.stats.overwrites++
	}
	c.store(g, glyph, b, size)
	return g.handle, nil
}

// LoadOrAdd returns the bitmap already cached for glyph in the group of d,
// or inserts b if there is none. loaded reports whether an existing bitmap
// was returned; in that case b is not taken over and stays with the caller.
//
// A loaded bitmap makes its group the most recently used one, as Lookup
// does. An insert follows the placement rules of Add.
//
// Renderers that rasterize concurrently on a miss should prefer LoadOrAdd
// to Add, so that a bitmap one of them is drawing is never replaced and
// released by the other.
func (c *Cache[D, B]) LoadOrAdd(d D, glyph GlyphIndex, b B) (actual B, h *Handle, loaded bool, err error) {
	size := int64(b.AllocatedSize())
	if size < 0 {
		var zero B
		return zero, nil, false, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.index[d]; ok {
		if e, ok := g.glyphs[glyph]; ok {
			c.order.MoveToFront(g.node)
			c.stats.hits++
			return e.bitmap, g.handle, true, nil
		}
	}

	c.reclaim()

	g := c.groupFor(d)
	c.store(g, glyph, b, size)
	return b, g.handle, false, nil
}

// Clear releases every cached bitmap and empties the cache.
//
// Clear does not check busy marks: the caller must guarantee that no
// renderer holds a group busy. Handles of cleared groups are retired.
func (c *Cache[D, B]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := c.order.Len()
	for n := c.order.Front(); n != nil; n = n.Next() {
		g := n.Value
		g.handle.forceRetire()
		for _, e := range g.glyphs {
			e.bitmap.Release()
		}
		g.glyphs = nil
	}
	c.order.Clear()
	c.index = make(map[D]*fontGroup[D, B], len(c.index))
	c.bytes = 0

	c.log().Debug("glyph cache cleared", "groups", groups)
}

// Contains reports whether a group exists for d, without touching its
// recency.
func (c *Cache[D, B]) Contains(d D) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.index[d]
	return ok
}

// Len returns the number of font groups.
func (c *Cache[D, B]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Bytes returns the total allocated size of every cached bitmap.
func (c *Cache[D, B]) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bytes
}

// PeakBytes returns the largest value Bytes has ever had.
// It is useful to size the budget of a cache for an application.
func (c *Cache[D, B]) PeakBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.peak
}

// Budget returns the configured byte budget.
func (c *Cache[D, B]) Budget() int64 {
	return c.budget
}

// GroupInfo describes one font group in a [Cache.Groups] snapshot.
type GroupInfo[D comparable] struct {
	Descriptor D
	Glyphs     int
	Bytes      int64
	Busy       bool
}

// Groups returns a snapshot of the groups, most recently used first.
func (c *Cache[D, B]) Groups() []GroupInfo[D] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]GroupInfo[D], 0, c.order.Len())
	for n := c.order.Front(); n != nil; n = n.Next() {
		g := n.Value
		out = append(out, GroupInfo[D]{
			Descriptor: g.descriptor,
			Glyphs:     len(g.glyphs),
			Bytes:      g.bytes,
			Busy:       g.handle.Busy(),
		})
	}
	return out
}

// groupFor returns the group of d, creating it at the most recently used
// end if needed. An existing group keeps its place. Caller must hold c.mu.
func (c *Cache[D, B]) groupFor(d D) *fontGroup[D, B] {
	if g, ok := c.index[d]; ok {
		return g
	}

	g := &fontGroup[D, B]{
		descriptor: d,
		glyphs:     make(map[GlyphIndex]entry[B]),
		handle:     newHandle(),
	}
	g.node = c.order.PushFront(g)
	c.index[d] = g
	c.stats.groupsCreated++
	c.log().Debug("glyph group created", "descriptor", d, "groups", c.order.Len())
	return g
}

// store records b under glyph and accounts for its size. Caller must hold c.mu.
func (c *Cache[D, B]) store(g *fontGroup[D, B], glyph GlyphIndex, b B, size int64) {
	g.glyphs[glyph] = entry[B]{bitmap: b, size: size}
	g.bytes += size
	c.bytes += size
	if c.bytes > c.peak {
		c.peak = c.bytes
	}
	c.stats.insertions++
}

// drop releases one entry of g and removes its size from the totals.
// The map slot is left for the caller to overwrite. Caller must hold c.mu.
func (c *Cache[D, B]) drop(g *fontGroup[D, B], e entry[B]) {
	g.bytes -= e.size
	c.bytes -= e.size
	e.bitmap.Release()
}

func (c *Cache[D, B]) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}
