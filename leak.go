package refobj

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// watchLeak reports r if it is garbage collected before its last reference
// is released. The accounting of a leaked object is returned to its
// Allocator since nobody can release it anymore.
func watchLeak[T any](r *Ref[T]) {
	runtime.SetFinalizer(r, func(r *Ref[T]) {
		n := r.refs.load()
		if n == 0 {
			return
		}

		fields := []zap.Field{
			zap.Int32("refs", n),
			zap.Int64("size", r.size),
			zap.String("type", fmt.Sprintf("%T", r.val)),
		}
		if traces := r.refs.traces(); traces != "" {
			fields = append(fields, zap.String("traces", traces))
		}
		r.alloc.log.Warn("object garbage collected with outstanding references", fields...)
		r.alloc.leaked(r.size)
	})
}

func unwatchLeak[T any](r *Ref[T]) {
	runtime.SetFinalizer(r, nil)
}
