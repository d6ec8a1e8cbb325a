package refobj

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is returned when an object could not be allocated. No
	// memory remains reserved when it is returned.
	ErrAllocation = errors.New("refobj: allocation failed")

	// ErrFreed is returned by the lock operations of an object whose last
	// reference has been released. Retain and Release panic with it.
	ErrFreed = errors.New("refobj: object already freed")

	// ErrBusy is returned by TryLock when the lock is held.
	ErrBusy = errors.New("refobj: lock is busy")

	// ErrNotLocked is returned by Unlock when the lock is not held.
	ErrNotLocked = errors.New("refobj: unlock of unlocked object")

	// ErrSpawn is returned when a goroutine could not be started. The
	// reference taken on its behalf has already been released.
	ErrSpawn = errors.New("refobj: spawn failed")

	// ErrSpawnLimit is returned by TrySpawn when every slot of the Spawner
	// is in use.
	ErrSpawnLimit = fmt.Errorf("%w: concurrency limit reached", ErrSpawn)
)
