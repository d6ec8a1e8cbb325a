package refobj

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Ref is a reference counted object. It holds the payload together with
// the lock and reference count that control it, and a *Ref is the handle
// that callers share. A Ref starts with a single reference owned by the
// caller of Alloc or New, and is freed by the Release that drops the last
// one.
//
// A Ref must only be created by Alloc or New and must not be copied.
type Ref[T any] struct {
	mu    sync.Mutex  // the intrinsic lock, guarding refs and the payload
	held  atomic.Bool // reports if mu is held by Lock, TryLock or Do
	freed atomic.Bool // set with mu held by the final Release
	refs  refs

	alloc  *Allocator
	size   int64
	pooled bool
	val    T
}

// Value returns a pointer to the payload. The Ref does not protect the
// payload by itself: callers that share it must only access it while
// holding the lock. It must not be used after the final Release.
func (r *Ref[T]) Value() *T { return &r.val }

// Retain adds a reference to the object. It must only be called by someone
// that already owns a reference, and every Retain must be matched by a
// Release. It panics with an error wrapping ErrFreed if the object has
// already been freed.
func (r *Ref[T]) Retain() {
	r.acquireLock()
	if r.freed.Load() {
		traces := r.refs.traces()
		r.releaseLock()
		panic(fmt.Errorf("%w: retain%s", ErrFreed, traceSuffix(traces)))
	}
	r.refs.acquire()
	r.releaseLock()
}

// Release drops a reference to the object. The Release that drops the last
// reference frees the object before returning, after which neither the Ref
// nor its payload may be used. It panics with an error wrapping ErrFreed if
// the object has already been freed.
func (r *Ref[T]) Release() {
	r.acquireLock()
	if r.freed.Load() {
		traces := r.refs.traces()
		r.releaseLock()
		panic(fmt.Errorf("%w: release%s", ErrFreed, traceSuffix(traces)))
	}
	last := r.refs.release()
	if last {
		// poison the object while the lock is still held: anyone
		// blocked on it sees the free once they get it.
		r.freed.Store(true)
		r.refs.trace("free")
	}
	r.releaseLock()

	if last {
		r.destroy()
	}
}

// Count returns the number of references to the object. It is a snapshot:
// concurrent calls to Retain and Release may change it before it is
// returned. It returns zero once the object has been freed.
func (r *Ref[T]) Count() int {
	r.acquireLock()
	n := r.refs.load()
	r.releaseLock()
	return int(n)
}

// destroy drops the payload and returns the object's resources to its
// Allocator. It is called exactly once, by the final Release.
func (r *Ref[T]) destroy() {
	if r.pooled {
		if buf, ok := any(r.val).([]byte); ok {
			r.alloc.pool.put(buf)
		}
	}
	var zero T
	r.val = zero

	if r.alloc.cfg.LeakCheck {
		unwatchLeak(r)
	}
	r.alloc.freed(r.size)
}

func traceSuffix(traces string) string {
	if traces == "" {
		return ""
	}
	return "\n" + traces
}
