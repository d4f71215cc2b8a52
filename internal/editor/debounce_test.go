package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastScheduleWins(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(500*time.Millisecond, clock.AfterFunc)
	var got []int

	d.Schedule(func() { got = append(got, 1) })
	d.Schedule(func() { got = append(got, 2) })

	assert.Equal(t, 1, clock.Live())
	clock.FireAll()
	assert.Equal(t, []int{2}, got)
	assert.False(t, d.Pending())
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)
	called := false

	d.Schedule(func() { called = true })
	d.Cancel()
	clock.FireAll()

	assert.False(t, called)
	assert.False(t, d.Flush())
}

func TestDebouncer_FlushRunsOnce(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)
	calls := 0

	d.Schedule(func() { calls++ })
	assert.True(t, d.Flush())
	clock.FireAll()

	assert.Equal(t, 1, calls)
}

func TestDebouncer_StaleTimerIsIgnored(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)
	calls := 0
	d.Schedule(func() { calls++ })

	// Fire the stale callback directly, as a timer racing with Stop would.
	stale := clock.timers[0]
	d.Schedule(func() { calls += 10 })
	stale.fn()
	clock.FireAll()

	assert.Equal(t, 10, calls)
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})

	d.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced callback did not run")
	}
}
