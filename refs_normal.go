//go:build !tracing
// +build !tracing

package refobj

import "fmt"

// refs is the reference count of an object. It is only accessed with the
// object's lock held. This version is used when the "tracing" build tag is
// not enabled. See refs_tracing.go for the "tracing" enabled version.
type refs int32

func (v *refs) init(n int32) {
	*v = refs(n)
}

func (v *refs) load() int32 {
	return int32(*v)
}

func (v *refs) acquire() {
	*v++
	if *v <= 1 {
		panic(fmt.Sprintf("refobj: inconsistent reference count: %d", *v))
	}
}

// release reports if the count reached zero.
func (v *refs) release() bool {
	*v--
	if *v < 0 {
		panic(fmt.Sprintf("refobj: inconsistent reference count: %d", *v))
	}
	return *v == 0
}

func (v *refs) trace(msg string) {}

func (v *refs) traces() string {
	return ""
}
