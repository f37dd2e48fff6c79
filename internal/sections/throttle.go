package sections

import (
	"sync"
	"time"
)

// FrameInterval is one animation frame at 60Hz.
const FrameInterval = time.Second / 60

// FrameSource runs callbacks on the next animation frame.
type FrameSource interface {
	Next(fn func())
}

// Throttle collapses bursts of scroll samples into one evaluation per frame.
// The newest sample submitted before the frame fires is the one evaluated.
type Throttle struct {
	frames FrameSource
	eval   func(Metrics)

	mu      sync.Mutex
	ticking bool
	pending Metrics
}

func NewThrottle(frames FrameSource, eval func(Metrics)) *Throttle {
	return &Throttle{frames: frames, eval: eval}
}

// Submit records a sample and reports whether it requested a new frame.
func (t *Throttle) Submit(m Metrics) bool {
	t.mu.Lock()
	t.pending = m
	if t.ticking {
		t.mu.Unlock()
		return false
	}
	t.ticking = true
	t.mu.Unlock()

	t.frames.Next(t.run)
	return true
}

func (t *Throttle) run() {
	t.mu.Lock()
	m := t.pending
	t.ticking = false
	t.mu.Unlock()

	t.eval(m)
}

// TickerFrames fires queued callbacks on a fixed-rate ticker.
type TickerFrames struct {
	mu    sync.Mutex
	queue []func()

	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewTickerFrames starts the frame loop. Stop must be called on teardown.
func NewTickerFrames(interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = FrameInterval
	}
	f := &TickerFrames{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go f.loop()
	return f
}

func (f *TickerFrames) loop() {
	defer close(f.done)
	for {
		select {
		case <-f.stop:
			return
		case <-f.ticker.C:
			f.mu.Lock()
			q := f.queue
			f.queue = nil
			f.mu.Unlock()
			for _, fn := range q {
				fn()
			}
		}
	}
}

func (f *TickerFrames) Next(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

// Stop ends the frame loop and waits for an in-flight frame to finish.
// Callbacks still queued are dropped. Must not be called from a callback.
func (f *TickerFrames) Stop() {
	f.once.Do(func() {
		f.ticker.Stop()
		close(f.stop)
	})
	<-f.done
}

// ManualFrames queues callbacks until Flush. Useful in tests and for
// callers that already own a render loop.
type ManualFrames struct {
	mu    sync.Mutex
	queue []func()
}

func (f *ManualFrames) Next(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

// Pending returns the number of queued callbacks.
func (f *ManualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Flush runs everything queued so far and returns how many ran.
func (f *ManualFrames) Flush() int {
	f.mu.Lock()
	q := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, fn := range q {
		fn()
	}
	return len(q)
}
