// ABOUTME: Tests for the dedupe window used by the alert bridge.
// ABOUTME: Validates suppression, expiry, eviction, reset, and concurrency safety.

package dedupe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Suppress_FirstFire(t *testing.T) {
	w := New(time.Minute, 100)

	assert.False(t, w.Suppress("device:10.0.0.5:online"))
}

func TestWindow_Suppress_RepeatInsideWindow(t *testing.T) {
	w := New(time.Minute, 100)

	assert.False(t, w.Suppress("motion:front-door:person"))
	assert.True(t, w.Suppress("motion:front-door:person"))
}

func TestWindow_Suppress_DistinctKeys(t *testing.T) {
	w := New(time.Minute, 100)

	assert.False(t, w.Suppress("device:10.0.0.5:online"))
	assert.False(t, w.Suppress("device:10.0.0.5:offline"))
	assert.False(t, w.Suppress("device:10.0.0.6:online"))
}

func TestWindow_Suppress_Expired(t *testing.T) {
	w := New(10*time.Millisecond, 100)

	assert.False(t, w.Suppress("k"))
	time.Sleep(20 * time.Millisecond)

	// Window elapsed: fires again and refreshes
	assert.False(t, w.Suppress("k"))
	assert.True(t, w.Suppress("k"))
}

func TestWindow_Eviction(t *testing.T) {
	w := New(time.Minute, 2)

	assert.False(t, w.Suppress("a"))
	assert.False(t, w.Suppress("b"))
	assert.False(t, w.Suppress("c")) // evicts "a"

	assert.Equal(t, 2, w.Len())
	assert.False(t, w.Suppress("a"), "evicted key should fire again")
}

func TestWindow_Reset(t *testing.T) {
	w := New(time.Minute, 100)

	assert.False(t, w.Suppress("k"))
	w.Reset()
	w.Reset() // repeat is safe

	assert.Equal(t, 0, w.Len())
	assert.False(t, w.Suppress("k"))
}

func TestWindow_Suppress_Atomic(t *testing.T) {
	w := New(time.Minute, 100)

	const goroutines = 100
	var fired int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if !w.Suppress("contested") {
				mu.Lock()
				fired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fired, "exactly one signal should pass the window")
}
