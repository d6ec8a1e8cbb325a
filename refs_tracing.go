//go:build tracing
// +build tracing

package refobj

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// refs is the reference count of an object, along with a history of the
// operations on it for debugging unbalanced retains and releases. It is
// only accessed with the object's lock held. This version is used when the
// "tracing" build tag is enabled.
type refs struct {
	n    int32
	msgs []string
}

func (v *refs) init(n int32) {
	v.n = n
	v.trace("init")
}

func (v *refs) load() int32 {
	return v.n
}

func (v *refs) acquire() {
	v.n++
	if v.n <= 1 {
		panic(fmt.Sprintf("refobj: inconsistent reference count: %d", v.n))
	}
	v.trace("acquire")
}

func (v *refs) release() bool {
	v.n--
	if v.n < 0 {
		panic(fmt.Sprintf("refobj: inconsistent reference count: %d", v.n))
	}
	v.trace("release")
	return v.n == 0
}

func (v *refs) trace(msg string) {
	v.msgs = append(v.msgs, fmt.Sprintf("%s: refs=%d\n%s", msg, v.n, debug.Stack()))
}

func (v *refs) traces() string {
	return strings.Join(v.msgs, "\n")
}
