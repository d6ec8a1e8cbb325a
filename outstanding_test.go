package refobj

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestOutstanding(t *testing.T) {
	ch := make(chan bool, 2)
	var o outstanding
	assert.That(t, o.acquire(8, 0))
	for i := 0; i < 10; i++ {
		assert.That(t, o.acquire(1, 0))
		o.release(1)
	}
	assert.Equal(t, o.live(), 1)
	assert.Equal(t, o.liveBytes(), 8)

	// acquires block while a wait is pending, so none happen past here.
	go func() {
		o.wait()
		ch <- false
	}()
	ch <- true
	o.release(8)
	assert.That(t, <-ch)
}

func TestOutstandingMax(t *testing.T) {
	var o outstanding
	assert.That(t, o.acquire(10, 16))
	assert.False(t, o.acquire(7, 16))
	assert.That(t, o.acquire(6, 16))
	assert.False(t, o.acquire(1<<62, 16))
	assert.Equal(t, o.live(), 2)
	assert.Equal(t, o.liveBytes(), 16)

	o.release(10)
	o.release(6)
	o.wait()
}
