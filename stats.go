package glyphcache

// counters are the cache statistics. They are guarded by Cache.mu.
type counters struct {
	hits          uint64
	misses        uint64
	insertions    uint64
	overwrites    uint64
	groupsCreated uint64
	reclaims      uint64
	evictedGroups uint64
	evictedGlyphs uint64
	evictedBytes  uint64
	busySkips     uint64
	overBudget    uint64
}

// Stats is a snapshot of cache statistics.
type Stats struct {
	// Hits and Misses count Lookup results. A lookup whose group exists
	// but lacks the glyph is a miss.
	Hits   uint64
	Misses uint64

	// Insertions counts bitmaps stored by Add and LoadOrAdd; Overwrites
	// counts the Adds that replaced an existing bitmap.
	Insertions uint64
	Overwrites uint64

	// GroupsCreated counts font groups created over the cache lifetime.
	GroupsCreated uint64

	// Reclaims counts eviction passes, EvictedGroups, EvictedGlyphs and
	// EvictedBytes what they removed.
	Reclaims      uint64
	EvictedGroups uint64
	EvictedGlyphs uint64
	EvictedBytes  uint64

	// BusySkips counts groups passed over by eviction because they were
	// busy; OverBudget counts passes that ended with the cache still at or
	// above its budget.
	BusySkips  uint64
	OverBudget uint64

	// Groups, Bytes, PeakBytes and Budget describe the current occupancy.
	Groups    int
	Bytes     int64
	PeakBytes int64
	Budget    int64
}

// HitRate returns the lookup hit rate as a percentage.
// Returns 0 if there are no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[D, B]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:          c.stats.hits,
		Misses:        c.stats.misses,
		Insertions:    c.stats.insertions,
		Overwrites:    c.stats.overwrites,
		GroupsCreated: c.stats.groupsCreated,
		Reclaims:      c.stats.reclaims,
		EvictedGroups: c.stats.evictedGroups,
		EvictedGlyphs: c.stats.evictedGlyphs,
		EvictedBytes:  c.stats.evictedBytes,
		BusySkips:     c.stats.busySkips,
		OverBudget:    c.stats.overBudget,
		Groups:        c.order.Len(),
		Bytes:         c.bytes,
		PeakBytes:     c.peak,
		Budget:        c.budget,
	}
}

// ResetStats zeroes the counters. Occupancy and peak are kept.
func (c *Cache[D, B]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = counters{}
}
