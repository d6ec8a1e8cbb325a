package refobj

import (
	"math/bits"
	"sync"
)

const (
	cacheLine  = 64 // typical size of a cache line, and the smallest class
	numClasses = 15 // number of power of two classes, up to 1MiB
)

// payloadPool recycles byte payloads in power of two size classes. payloads
// larger than the biggest class are never pooled.
type payloadPool struct {
	classes [numClasses]sync.Pool
}

// classOf returns the class that can hold size bytes, or -1 if size is too
// large to be pooled.
func classOf(size int) int {
	if size <= cacheLine {
		return 0
	}
	c := bits.Len(uint(size-1)) - 6
	if c >= numClasses {
		return -1
	}
	return c
}

// get returns a zeroed buffer with length size. it may be reused from the
// pool.
func (p *payloadPool) get(size int) []byte {
	c := classOf(size)
	if c < 0 {
		return make([]byte, size)
	}
	if bp, ok := p.classes[c].Get().(*[]byte); ok {
		return (*bp)[:size]
	}
	return make([]byte, size, cacheLine<<c)
}

// put zeroes buf and places it into the pool for get. buffers that did not
// come from get are dropped.
func (p *payloadPool) put(buf []byte) {
	c := classOf(cap(buf))
	if c < 0 || cap(buf) != cacheLine<<c {
		return
	}
	buf = buf[:cap(buf)]
	clear(buf)
	p.classes[c].Put(&buf)
}
