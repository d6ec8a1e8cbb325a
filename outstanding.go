package refobj

import (
	"sync"
	"sync/atomic"
)

// outstanding counts the objects of an Allocator that have not been freed.
// it doubles as a wait group: every live object holds a read lock.
type outstanding struct {
	mu    sync.RWMutex
	count int64
	bytes int64
}

// acquire records a new object of the given size and blocks wait calls
// until it is released. it reports false, recording nothing, if the object
// would take the total size over max. a max of zero is unlimited. it blocks
// while a wait is pending.
func (o *outstanding) acquire(size, max int64) bool {
	o.mu.RLock()
	for {
		cur := atomic.LoadInt64(&o.bytes)
		if max > 0 && size > max-cur {
			o.mu.RUnlock()
			return false
		}
		if atomic.CompareAndSwapInt64(&o.bytes, cur, cur+size) {
			break
		}
	}
	atomic.AddInt64(&o.count, 1)
	return true
}

// release forgets an object recorded by acquire. it may be called from a
// different goroutine than the acquire.
func (o *outstanding) release(size int64) {
	atomic.AddInt64(&o.bytes, -size)
	atomic.AddInt64(&o.count, -1)
	o.mu.RUnlock()
}

// live returns the number of acquired objects.
func (o *outstanding) live() int64 { return atomic.LoadInt64(&o.count) }

// liveBytes returns the total size of acquired objects.
func (o *outstanding) liveBytes() int64 { return atomic.LoadInt64(&o.bytes) }

// wait blocks until there are no acquired objects.
func (o *outstanding) wait() {
	o.mu.Lock()
	o.mu.Unlock()
}
