package reveal

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBannerDelay is how long a success banner stays on screen.
const DefaultBannerDelay = 3 * time.Second

// Banner is a transient indicator that hides itself after a fixed delay.
type Banner struct {
	delay time.Duration

	mu      sync.Mutex
	seq     *Sequence
	visible atomic.Bool
}

// NewBanner returns a hidden banner. A non-positive delay uses
// DefaultBannerDelay.
func NewBanner(delay time.Duration) *Banner {
	if delay <= 0 {
		delay = DefaultBannerDelay
	}
	return &Banner{delay: delay}
}

// Show makes the banner visible and restarts its dismiss timer.
func (b *Banner) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq != nil {
		b.seq.Stop()
	}
	b.visible.Store(true)
	b.seq = Start([]Step{{
		After: b.delay,
		Apply: func() { b.visible.Store(false) },
	}})
}

// Hide dismisses the banner immediately.
func (b *Banner) Hide() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq != nil {
		b.seq.Stop()
		b.seq = nil
	}
	b.visible.Store(false)
}

// Visible reports whether the banner is currently shown.
func (b *Banner) Visible() bool {
	return b.visible.Load()
}

// Delay is the dismiss delay.
func (b *Banner) Delay() time.Duration {
	return b.delay
}

// Close cancels the pending dismiss without changing visibility.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq != nil {
		b.seq.Stop()
		b.seq = nil
	}
}
