package refobj

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// Allocator creates reference counted objects and accounts for them until
// they are freed. It is safe to be used concurrently.
type Allocator struct {
	cfg     Config
	log     *zap.Logger
	metrics *Metrics
	pool    payloadPool
	live    outstanding
}

// defaultAllocator serves Alloc and New without an explicit Allocator.
var defaultAllocator = NewAllocator(Config{})

// NewAllocator returns an Allocator using the given Config.
func NewAllocator(cfg Config, opts ...Option) *Allocator {
	a := &Allocator{
		cfg: cfg,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc allocates a zeroed payload of size bytes from the default
// Allocator.
func Alloc(size int) (*Ref[[]byte], error) {
	return defaultAllocator.Alloc(size)
}

// Alloc allocates a zeroed payload of size bytes. The returned Ref has a
// reference count of one that the caller owns. It returns an error wrapping
// ErrAllocation if size is negative, if the allocation would exceed the
// configured MaxBytes, or if the runtime cannot hold a payload that large.
// Nothing stays reserved after an error.
func (a *Allocator) Alloc(size int) (*Ref[[]byte], error) {
	if size < 0 {
		return nil, a.allocFailed(int64(size), "negative size")
	}
	if err := a.reserve(int64(size)); err != nil {
		return nil, err
	}
	buf, err := a.payload(size)
	if err != nil {
		a.live.release(int64(size))
		return nil, a.allocFailed(int64(size), err.Error())
	}

	r := newRef[[]byte](a, int64(size))
	r.val = buf
	r.pooled = !a.cfg.DisablePool
	return r, nil
}

// New allocates a zero T from a, or from the default Allocator if a is nil.
// The returned Ref has a reference count of one that the caller owns. It
// returns an error wrapping ErrAllocation if the allocation would exceed
// the configured MaxBytes.
func New[T any](a *Allocator) (*Ref[T], error) {
	if a == nil {
		a = defaultAllocator
	}
	var zero T
	size := int64(unsafe.Sizeof(zero))
	if err := a.reserve(size); err != nil {
		return nil, err
	}
	return newRef[T](a, size), nil
}

// reserve accounts for size bytes, failing if they exceed MaxBytes. A
// successful reserve must be undone with live.release or handed to newRef.
func (a *Allocator) reserve(size int64) error {
	if !a.live.acquire(size, a.cfg.MaxBytes) {
		return a.allocFailed(size, "exceeds max bytes")
	}
	return nil
}

// payload makes a zeroed buffer of size bytes. a size the runtime cannot
// allocate makes the runtime panic, which is returned as an error instead.
func (a *Allocator) payload(size int) (buf []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%v", v)
		}
	}()
	if a.cfg.DisablePool {
		return make([]byte, size), nil
	}
	return a.pool.get(size), nil
}

// newRef constructs a Ref over size bytes already reserved with reserve.
func newRef[T any](a *Allocator, size int64) *Ref[T] {
	r := &Ref[T]{alloc: a, size: size}
	r.refs.init(1)
	if a.cfg.LeakCheck {
		watchLeak(r)
	}

	a.metrics.allocated(size)
	return r
}

func (a *Allocator) allocFailed(size int64, reason string) error {
	a.metrics.allocFailed()
	a.log.Debug("allocation failed",
		zap.Int64("size", size),
		zap.String("reason", reason),
		zap.Int64("live_bytes", a.live.liveBytes()),
		zap.Int64("max_bytes", a.cfg.MaxBytes))
	return fmt.Errorf("%w: %s: %d bytes", ErrAllocation, reason, size)
}

// freed returns the accounting of a freed object of the given size.
func (a *Allocator) freed(size int64) {
	a.live.release(size)
	a.metrics.freed(size)
}

// leaked returns the accounting of an object that was garbage collected
// without its last reference being released.
func (a *Allocator) leaked(size int64) {
	a.live.release(size)
	a.metrics.leaked(size)
}

// Live returns the number of objects allocated and not yet freed.
func (a *Allocator) Live() int64 { return a.live.live() }

// LiveBytes returns the payload bytes allocated and not yet freed.
func (a *Allocator) LiveBytes() int64 { return a.live.liveBytes() }

// Wait blocks until every object allocated before the call has been freed.
// Allocations block while a Wait is pending, so it must not be called by a
// goroutine that others wait on to allocate.
func (a *Allocator) Wait() { a.live.wait() }
