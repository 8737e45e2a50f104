package glyphcache

import "sync/atomic"

// retired is the reader count stored in a Handle once its group has
// been evicted or cleared.
const retired = -1

// Handle is the busy marker of one font group.
//
// A renderer that received a Handle from [Cache.Lookup] or [Cache.Add]
// calls MarkBusy before reading the group's bitmaps and Done when it has
// finished. While at least one reader is active the group is never
// evicted. The handle lives independently of the cache's internal
// structures, so it stays valid after the group is gone; MarkBusy then
// reports false and the caller must look the glyph up again.
//
// Handle is safe for concurrent use. Several renderers may hold the same
// group busy at once.
type Handle struct {
	readers atomic.Int64
}

func newHandle() *Handle {
	return &Handle{}
}

// MarkBusy registers a reader. It returns false if the group has already
// been retired, in which case nothing was registered and Done must not
// be called.
func (h *Handle) MarkBusy() bool {
	for {
		n := h.readers.Load()
		if n == retired {
			return false
		}
		if h.readers.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Done unregisters a reader previously registered with MarkBusy.
// Calling Done without a matching MarkBusy panics.
func (h *Handle) Done() {
	for {
		n := h.readers.Load()
		if n <= 0 {
			panic("glyphcache: Handle.Done called without MarkBusy")
		}
		if h.readers.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// Busy reports whether any reader currently holds the group.
func (h *Handle) Busy() bool {
	return h.readers.Load() > 0
}

// Retired reports whether the group behind the handle has been evicted
// or cleared.
func (h *Handle) Retired() bool {
	return h.readers.Load() == retired
}

// tryRetire retires the handle if no reader holds it.
func (h *Handle) tryRetire() bool {
	return h.readers.CompareAndSwap(0, retired)
}

// forceRetire retires the handle regardless of readers.
// Used by Clear, whose caller guarantees there are none.
func (h *Handle) forceRetire() {
	h.readers.Store(retired)
}
