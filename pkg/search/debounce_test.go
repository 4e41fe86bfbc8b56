package search

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_FiresAfterQuietPeriod(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 300*time.Millisecond)

	var calls atomic.Int32
	assert.False(t, d.Trigger(func() { calls.Add(1) }))
	assert.True(t, d.Pending())

	mock.Add(299 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	mock.Add(time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, d.Pending())
}

func TestDebouncer_KeepsOnlyLatest(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 300*time.Millisecond)

	var last atomic.Value
	var calls atomic.Int32
	for i, q := range []string{"i", "in", "int", "inte"} {
		superseded := d.Trigger(func() {
			calls.Add(1)
			last.Store(q)
		})
		assert.Equal(t, i > 0, superseded)
		mock.Add(50 * time.Millisecond)
	}

	mock.Add(300 * time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "inte", last.Load())

	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 300*time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
