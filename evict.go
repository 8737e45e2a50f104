package glyphcache

// reclaim evicts groups from the least recently used end until the cache
// is under budget or every group has been examined. Busy groups are
// skipped. Caller must hold c.mu.
func (c *Cache[D, B]) reclaim() {
	if c.bytes < c.budget || c.order.Len() == 0 {
		return
	}
	c.stats.reclaims++

	skipped := 0
	for n := c.order.Back(); n != nil && c.bytes >= c.budget; {
		// Capture the neighbour first, evict unlinks n.
		prev := n.Prev()
		if g := n.Value; g.handle.tryRetire() {
			c.evict(g)
		} else {
			skipped++
		}
		n = prev
	}
	c.stats.busySkips += uint64(skipped)

	if c.bytes >= c.budget {
		c.stats.overBudget++
		c.log().Debug("glyph cache over budget after eviction",
			"bytes", c.bytes, "budget", c.budget, "busy_groups", skipped)
	}
}

// evict releases every bitmap of a retired group and unlinks it.
// Caller must hold c.mu.
func (c *Cache[D, B]) evict(g *fontGroup[D, B]) {
	for _, e := range g.glyphs {
		e.bitmap.Release()
	}
	c.bytes -= g.bytes
	c.order.Remove(g.node)
	delete(c.index, g.descriptor)

	c.stats.evictedGroups++
	c.stats.evictedGlyphs += uint64(len(g.glyphs))
	c.stats.evictedBytes += uint64(g.bytes) //nolint:gosec // group bytes are never negative

	c.log().Debug("glyph group evicted",
		"descriptor", g.descriptor, "glyphs", len(g.glyphs), "bytes", g.bytes)
	g.glyphs = nil
}
