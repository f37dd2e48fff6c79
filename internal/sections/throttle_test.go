package sections

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleOneEvaluationPerFrame(t *testing.T) {
	var frames ManualFrames
	var evaluated []float64
	th := NewThrottle(&frames, func(m Metrics) { evaluated = append(evaluated, m.ScrollY) })

	assert.True(t, th.Submit(Metrics{ScrollY: 1}))
	assert.False(t, th.Submit(Metrics{ScrollY: 2}))
	assert.False(t, th.Submit(Metrics{ScrollY: 3}))
	assert.Equal(t, 1, frames.Pending())

	assert.Equal(t, 1, frames.Flush())
	assert.Equal(t, []float64{3}, evaluated, "latest sample wins")

	assert.True(t, th.Submit(Metrics{ScrollY: 4}))
	frames.Flush()
	assert.Equal(t, []float64{3, 4}, evaluated)
	assert.Zero(t, frames.Flush())
}

func TestTickerFramesRunsAndStops(t *testing.T) {
	f := NewTickerFrames(time.Millisecond)

	var mu sync.Mutex
	ran := 0
	f.Next(func() {
		mu.Lock()
		ran++
		mu.Unlock()
	})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran == 1
	}, 2*time.Second, time.Millisecond)

	f.Stop()
	f.Stop()
	f.Next(func() { t.Error("callback ran after Stop") })
	time.Sleep(5 * time.Millisecond)
}

func TestThrottleWithTrackerNotifiesSubscriber(t *testing.T) {
	var frames ManualFrames
	tr := NewTracker(nil)
	got := make(chan ID, 1)
	tr.Subscribe(func(id ID) { got <- id })
	th := NewThrottle(&frames, func(m Metrics) { tr.OnScroll(m) })

	th.Submit(Metrics{ScrollY: 500, Sections: Layout{Experience: {Top: -5, Bottom: 300}}})
	frames.Flush()

	select {
	case id := <-got:
		assert.Equal(t, Experience, id)
	default:
		t.Fatal("subscriber not notified")
	}
}
