// Package cache provides the recency list and the small LRU cache used
// inside glyphcache.
//
// # List[V]
//
// A doubly-linked list whose front is the most recently used node. It is
// the ordering half of the glyph cache's group registry: lookups go through
// a map, eviction walks the list from the back.
//
//	l := cache.NewList[string]()
//	n := l.PushFront("a")
//	l.MoveToFront(n)
//	oldest := l.Back()
//
// # Cache[K, V]
//
// A thread-safe LRU cache bounded by entry count, used for shaped text runs.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
// List is not synchronized.
package cache
