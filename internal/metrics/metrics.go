// Package metrics exports glyph cache statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/text"
)

// Source is what the collector reads on every scrape.
type Source interface {
	Stats() glyphcache.Stats
}

// Collector is a prometheus.Collector over a glyph cache and, optionally,
// the renderer drawing from it. Values are read at scrape time, so
// nothing has to be updated on the cache's hot path.
type Collector struct {
	src      Source
	renderer *text.Renderer

	hits          *prometheus.Desc
	misses        *prometheus.Desc
	insertions    *prometheus.Desc
	overwrites    *prometheus.Desc
	groupsCreated *prometheus.Desc
	reclaims      *prometheus.Desc
	evictedGroups *prometheus.Desc
	evictedGlyphs *prometheus.Desc
	evictedBytes  *prometheus.Desc
	busySkips     *prometheus.Desc
	overBudget    *prometheus.Desc
	groups        *prometheus.Desc
	bytes         *prometheus.Desc
	peakBytes     *prometheus.Desc
	budget        *prometheus.Desc

	uncached   *prometheus.Desc
	runHits    *prometheus.Desc
	runMisses  *prometheus.Desc
	runEntries *prometheus.Desc
}

// NewCollector returns a collector for src with metric names under
// namespace. r may be nil.
func NewCollector(namespace string, src Source, r *text.Renderer) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &Collector{
		src:      src,
		renderer: r,

		hits:          desc("lookup_hits_total", "Number of glyph lookups that found a bitmap"),
		misses:        desc("lookup_misses_total", "Number of glyph lookups that found nothing"),
		insertions:    desc("insertions_total", "Number of bitmaps stored"),
		overwrites:    desc("overwrites_total", "Number of bitmaps replaced by a later Add"),
		groupsCreated: desc("groups_created_total", "Number of font groups created"),
		reclaims:      desc("reclaims_total", "Number of eviction passes"),
		evictedGroups: desc("evicted_groups_total", "Number of font groups evicted"),
		evictedGlyphs: desc("evicted_glyphs_total", "Number of bitmaps released by eviction"),
		evictedBytes:  desc("evicted_bytes_total", "Bytes released by eviction"),
		busySkips:     desc("busy_skips_total", "Number of busy groups passed over by eviction"),
		overBudget:    desc("over_budget_total", "Number of eviction passes that ended over budget"),
		groups:        desc("groups", "Current number of font groups"),
		bytes:         desc("bytes", "Current allocated size of cached bitmaps"),
		peakBytes:     desc("peak_bytes", "Largest allocated size seen"),
		budget:        desc("budget_bytes", "Configured byte budget"),

		uncached:   desc("uncached_glyphs_total", "Number of glyphs drawn without the cache"),
		runHits:    desc("shaped_run_hits_total", "Number of shaped-run cache hits"),
		runMisses:  desc("shaped_run_misses_total", "Number of shaped-run cache misses"),
		runEntries: desc("shaped_runs", "Current number of cached shaped runs"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.hits, c.misses, c.insertions, c.overwrites, c.groupsCreated,
		c.reclaims, c.evictedGroups, c.evictedGlyphs, c.evictedBytes,
		c.busySkips, c.overBudget, c.groups, c.bytes, c.peakBytes, c.budget,
	} {
		ch <- d
	}
	if c.renderer != nil {
		ch <- c.uncached
		ch <- c.runHits
		ch <- c.runMisses
		ch <- c.runEntries
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}

	counter(c.hits, s.Hits)
	counter(c.misses, s.Misses)
	counter(c.insertions, s.Insertions)
	counter(c.overwrites, s.Overwrites)
	counter(c.groupsCreated, s.GroupsCreated)
	counter(c.reclaims, s.Reclaims)
	counter(c.evictedGroups, s.EvictedGroups)
	counter(c.evictedGlyphs, s.EvictedGlyphs)
	counter(c.evictedBytes, s.EvictedBytes)
	counter(c.busySkips, s.BusySkips)
	counter(c.overBudget, s.OverBudget)
	gauge(c.groups, int64(s.Groups))
	gauge(c.bytes, s.Bytes)
	gauge(c.peakBytes, s.PeakBytes)
	gauge(c.budget, s.Budget)

	if c.renderer != nil {
		rs := c.renderer.Shaper().RunCacheStats()
		counter(c.uncached, c.renderer.Uncached())
		counter(c.runHits, rs.Hits)
		counter(c.runMisses, rs.Misses)
		gauge(c.runEntries, int64(rs.Len))
	}
}
