package refobj

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zeebo/assert"
)

func TestLockMutualExclusion(t *testing.T) {
	const iters = 1000
	np := runtime.GOMAXPROCS(-1)
	incrs, decrs := np+1, np

	r, err := New[int](nil)
	assert.NoError(t, err)
	assert.NoError(t, r.Do(func(v *int) { *v = 7 }))

	var inside int32
	var wg sync.WaitGroup
	worker := func(delta int) {
		defer wg.Done()
		for i := 0; i < iters; i++ {
			assert.NoError(t, r.Lock())
			if atomic.AddInt32(&inside, 1) != 1 {
				t.Error("two goroutines held the lock")
			}
			*r.Value() += delta
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, r.Unlock())
		}
	}

	wg.Add(incrs + decrs)
	for i := 0; i < incrs; i++ {
		go worker(1)
	}
	for i := 0; i < decrs; i++ {
		go worker(-1)
	}
	wg.Wait()

	assert.Equal(t, *r.Value(), 7+iters*(incrs-decrs))
	r.Release()
}

func TestTryLock(t *testing.T) {
	r, err := New[int](nil)
	assert.NoError(t, err)
	defer r.Release()

	assert.NoError(t, r.TryLock())
	assert.Equal(t, r.TryLock(), ErrBusy)

	// a different goroutine sees it busy too, without blocking.
	errs := make(chan error)
	go func() { errs <- r.TryLock() }()
	assert.Equal(t, <-errs, ErrBusy)

	assert.NoError(t, r.Unlock())
	assert.NoError(t, r.TryLock())

	// the lock granted by TryLock excludes Lock.
	locked := make(chan struct{})
	go func() {
		assert.NoError(t, r.Lock())
		close(locked)
		assert.NoError(t, r.Unlock())
	}()
	select {
	case <-locked:
		t.Fatal("Lock acquired a lock held by TryLock")
	default:
	}
	assert.NoError(t, r.Unlock())
	<-locked
}

func TestUnlockNotLocked(t *testing.T) {
	r, err := New[int](nil)
	assert.NoError(t, err)
	defer r.Release()

	assert.Equal(t, r.Unlock(), ErrNotLocked)
	assert.NoError(t, r.Lock())
	assert.NoError(t, r.Unlock())
	assert.Equal(t, r.Unlock(), ErrNotLocked)
}

func TestUnlockInternalLock(t *testing.T) {
	r, err := New[int](nil)
	assert.NoError(t, err)
	defer r.Release()

	// the lock taken by Retain, Release and Count is not Unlock's to release.
	r.acquireLock()
	assert.Equal(t, r.Unlock(), ErrNotLocked)
	assert.Equal(t, r.TryLock(), ErrBusy)
	r.releaseLock()

	assert.NoError(t, r.Do(func(v *int) { *v = 1 }))
	assert.Equal(t, r.Unlock(), ErrNotLocked)
	assert.Equal(t, r.Count(), 1)
}

func TestLockGuardsCount(t *testing.T) {
	r, err := New[int](nil)
	assert.NoError(t, err)

	assert.NoError(t, r.Lock())
	counted := make(chan int)
	go func() { counted <- r.Count() }()

	select {
	case <-counted:
		t.Fatal("Count returned while the lock was held")
	default:
	}
	assert.NoError(t, r.Unlock())
	assert.Equal(t, <-counted, 1)
	r.Release()
}

func TestLockFreed(t *testing.T) {
	r, err := New[int](nil)
	assert.NoError(t, err)
	r.Release()

	assert.Equal(t, r.Lock(), ErrFreed)
	assert.Equal(t, r.TryLock(), ErrFreed)
	assert.Equal(t, r.Unlock(), ErrFreed)
	assert.Equal(t, r.Do(func(*int) { t.Fatal("called on a freed object") }), ErrFreed)
}
