package refobj

// The lock operations below expose the lock that guards the reference
// count. Calling Retain, Release or Count while holding it deadlocks, as
// does calling Lock twice from the same goroutine.

// Lock blocks until it acquires the object's lock. It returns ErrFreed,
// without the lock held, if the object has been freed.
func (r *Ref[T]) Lock() error {
	r.acquireLock()
	if r.freed.Load() {
		r.releaseLock()
		return ErrFreed
	}
	r.held.Store(true)
	return nil
}

// Unlock releases the lock taken by Lock, TryLock or Do. It returns
// ErrNotLocked if none of them holds it, even while Retain, Release or
// Count hold it internally, or ErrFreed if the object has been freed. Like
// a sync.Mutex, the lock may be unlocked by a different goroutine than the
// one that locked it; which goroutine locked it is not tracked.
func (r *Ref[T]) Unlock() error {
	if !r.held.CompareAndSwap(true, false) {
		if r.freed.Load() {
			return ErrFreed
		}
		return ErrNotLocked
	}
	r.releaseLock()
	return nil
}

// TryLock attempts to acquire the object's lock without blocking. It
// returns nil if the lock was acquired, ErrBusy if it is held by someone
// else, and ErrFreed if the object has been freed.
func (r *Ref[T]) TryLock() error {
	if !r.mu.TryLock() {
		if r.freed.Load() {
			return ErrFreed
		}
		return ErrBusy
	}
	if r.freed.Load() {
		r.releaseLock()
		return ErrFreed
	}
	r.held.Store(true)
	return nil
}

// Do calls fn with the payload while holding the object's lock.
func (r *Ref[T]) Do(fn func(*T)) error {
	if err := r.Lock(); err != nil {
		return err
	}
	defer r.Unlock()
	fn(&r.val)
	return nil
}

// acquireLock and releaseLock take the lock for the reference count. They
// leave held alone so that Unlock cannot release them.
func (r *Ref[T]) acquireLock() { r.mu.Lock() }

func (r *Ref[T]) releaseLock() { r.mu.Unlock() }
