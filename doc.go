// package refobj provides manually reference counted objects with an intrinsic lock.
//
// A Ref is shared by any number of goroutines whose lifetimes are not known
// in advance. Instead of relying on the last user to know it is the last,
// every owner holds a reference, and the Release that drops the final
// reference frees the object and returns its memory to the Allocator:
//
//	counter, err := refobj.New[int](nil)
//	if err != nil {
//		return err
//	}
//	counter.Do(func(v *int) { *v = 100 })
//
//	spawner := refobj.NewSpawner(0)
//	for i := 0; i < 10; i++ {
//		err := refobj.Spawn(ctx, spawner, counter, func(r *refobj.Ref[int]) {
//			defer r.Release()
//			r.Do(func(v *int) { *v++ })
//		})
//		if err != nil {
//			break
//		}
//	}
//	spawner.Wait()
//	counter.Release()
//
// Every object carries a single lock. It guards the reference count, and by
// convention the payload: callers use Lock, Unlock, TryLock or Do around
// any access to Value that may race with another owner. Since the count
// shares that lock, Retain, Release and Count must not be called while
// holding it.
//
// Handing a Ref to a new goroutine must go through Spawn or TrySpawn. They
// retain a reference on behalf of the goroutine before it starts, closing
// the window where the caller could release the last reference before the
// goroutine has a chance to retain its own. If the goroutine cannot be
// started the extra reference is released again.
//
// Double releases and retains of freed objects panic. Building with the
// "tracing" tag records the history of every reference count and includes
// it in those panics and in the reports of Config.LeakCheck.
package refobj
