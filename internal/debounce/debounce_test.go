package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastTriggerWins(t *testing.T) {
	d := New(20 * time.Millisecond)
	got := make(chan string, 3)

	for _, q := range []string{"c", "co", "cof"} {
		q := q
		d.Trigger(func() { got <- q })
	}

	select {
	case v := <-got:
		assert.Equal(t, "cof", v)
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got, "superseded triggers must not run")
	assert.False(t, d.Pending())
}

func TestStopCancels(t *testing.T) {
	d := New(20 * time.Millisecond)
	var ran atomic.Bool

	d.Trigger(func() { ran.Store(true) })
	require.True(t, d.Pending())
	assert.True(t, d.Stop())
	assert.False(t, d.Stop())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestWaitsForDelay(t *testing.T) {
	d := New(40 * time.Millisecond)
	start := time.Now()
	done := make(chan time.Duration, 1)

	d.Trigger(func() { done <- time.Since(start) })

	select {
	case elapsed := <-done:
		assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
	assert.Equal(t, 40*time.Millisecond, d.Delay())
}
