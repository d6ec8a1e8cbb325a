package refobj

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Spawner starts goroutines that are handed a reference to an object, and
// waits for them to finish. The zero value is an unbounded Spawner.
type Spawner struct {
	sem *semaphore.Weighted // nil if unbounded
	wg  conc.WaitGroup
}

// NewSpawner returns a Spawner running at most limit goroutines at once. A
// limit of zero or less is unbounded.
func NewSpawner(limit int) *Spawner {
	s := new(Spawner)
	if limit > 0 {
		s.sem = semaphore.NewWeighted(int64(limit))
	}
	return s
}

// Spawn starts entry(r) on a new goroutine, handing it a reference to r.
// The reference is retained before the goroutine exists, so the object
// outlives the handoff even if the caller releases its own reference right
// away, and entry observes a count that includes it. entry owns that
// reference and must Release it. entry must not allocate from an Allocator
// that someone is waiting on with Allocator.Wait while it still holds the
// reference: the allocation blocks until the Wait returns, which never
// happens.
//
// Spawn blocks while the Spawner is at its limit. If ctx is done before the
// goroutine starts, the reference is released again, nothing is started, and
// an error wrapping ErrSpawn and the context error is returned.
func Spawn[T any](ctx context.Context, s *Spawner, r *Ref[T], entry func(*Ref[T])) error {
	r.Retain()
	if err := s.start(ctx, func() { entry(r) }); err != nil {
		r.Release()
		spawnFailed(r, err)
		return err
	}
	r.alloc.metrics.spawned()
	return nil
}

// TrySpawn is like Spawn but never blocks: if the Spawner is at its limit
// it releases the reference and returns ErrSpawnLimit.
func TrySpawn[T any](s *Spawner, r *Ref[T], entry func(*Ref[T])) error {
	r.Retain()
	if err := s.tryStart(func() { entry(r) }); err != nil {
		r.Release()
		spawnFailed(r, err)
		return err
	}
	r.alloc.metrics.spawned()
	return nil
}

// Wait blocks until every goroutine started by the Spawner has returned. If
// any of them panicked, Wait panics with the first panic.
func (s *Spawner) Wait() { s.wg.Wait() }

func (s *Spawner) start(ctx context.Context, fn func()) error {
	// check ctx first: the semaphore may succeed without looking at it.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("%w: %w", ErrSpawn, err)
		}
	}
	s.run(fn)
	return nil
}

func (s *Spawner) tryStart(fn func()) error {
	if s.sem != nil && !s.sem.TryAcquire(1) {
		return ErrSpawnLimit
	}
	s.run(fn)
	return nil
}

// run starts fn with a slot of the semaphore already acquired.
func (s *Spawner) run(fn func()) {
	s.wg.Go(func() {
		if s.sem != nil {
			defer s.sem.Release(1)
		}
		fn()
	})
}

func spawnFailed[T any](r *Ref[T], err error) {
	r.alloc.metrics.spawnFailed()
	r.alloc.log.Debug("spawn failed",
		zap.Error(err),
		zap.Int("refs", r.Count()))
}
