package raster

import (
	"math/bits"
	"sync"
)

// Pixel buffers are pooled in power-of-two size classes from 64 bytes to
// 1 MiB. Larger buffers are allocated exactly and left to the collector.
const (
	minClassShift = 6
	maxClassShift = 20
)

var bufferPools [maxClassShift - minClassShift + 1]sync.Pool

// sizeClass returns the pool index for a buffer of n bytes, or -1 if n is
// above the largest class.
func sizeClass(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(n - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// getBuffer returns a zeroed buffer of length n. Its capacity is the size
// class, which is the memory the buffer really holds.
func getBuffer(n int) []byte {
	if n == 0 {
		return nil
	}
	c := sizeClass(n)
	if c < 0 {
		return make([]byte, n)
	}
	if p, ok := bufferPools[c].Get().(*[]byte); ok {
		buf := (*p)[:n]
		clear(buf)
		return buf
	}
	return make([]byte, n, 1<<(c+minClassShift))
}

// putBuffer returns buf to its pool. Buffers that do not match a class
// exactly are dropped.
func putBuffer(buf []byte) {
	n := cap(buf)
	if n == 0 {
		return
	}
	c := sizeClass(n)
	if c < 0 || n != 1<<(c+minClassShift) {
		return
	}
	buf = buf[:0]
	bufferPools[c].Put(&buf)
}
