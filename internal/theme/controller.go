package theme

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/reveal"
)

// DefaultTransition is how long the ripple marker stays after a toggle.
const DefaultTransition = 1500 * time.Millisecond

// Point is a viewport coordinate, usually the click that triggered a toggle.
type Point struct {
	X, Y float64
}

// Ripple marks an in-flight theme transition centered on a point. The page
// renders it as an expanding circle; it carries no state of its own.
type Ripple struct {
	X, Y float64
	ID   int64
	Mode Mode
}

// InitialMode resolves the mode at startup: a valid stored value wins,
// then the environment preference, then light.
func InitialMode(store Store, key string, prefs PreferenceSource) Mode {
	if store != nil {
		if v, ok := store.Load(key); ok {
			if m, ok := ParseMode(v); ok {
				return m
			}
		}
	}
	if prefs != nil {
		if dark, ok := prefs.PrefersDark(); ok && dark {
			return Dark
		}
	}
	return Light
}

// Controller owns the mode for one scope and is the only thing that
// mutates it.
type Controller struct {
	store      Store
	key        string
	transition time.Duration

	mu     sync.Mutex
	mode   Mode
	seq    *reveal.Sequence
	ripple atomic.Pointer[Ripple]
}

// Option configures a Controller.
type Option func(*Controller)

// WithKey changes the storage key.
func WithKey(key string) Option {
	return func(c *Controller) { c.key = key }
}

// WithTransition changes how long the ripple marker lives.
func WithTransition(d time.Duration) Option {
	return func(c *Controller) { c.transition = d }
}

// NewController resolves the initial mode and returns a ready controller.
func NewController(store Store, prefs PreferenceSource, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		key:        DefaultKey,
		transition: DefaultTransition,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	c.mode = InitialMode(c.store, c.key, prefs)
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Dark reports whether dark mode is active.
func (c *Controller) Dark() bool {
	return c.Mode() == Dark
}

// Toggle flips the mode and persists it. A failed write is logged and
// otherwise ignored. When origin is set a ripple marker is placed there and
// cleared after the transition duration.
func (c *Controller) Toggle(origin *Point) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = c.mode.Toggle()
	if err := c.store.Save(c.key, string(c.mode)); err != nil {
		log.Printf("theme: persisting %s: %v", c.mode, err)
	}

	if origin != nil {
		c.startRipple(*origin)
	}
	return c.mode
}

// startRipple replaces any active marker. Caller holds c.mu.
func (c *Controller) startRipple(at Point) {
	if c.seq != nil {
		c.seq.Stop()
	}
	r := &Ripple{X: at.X, Y: at.Y, ID: time.Now().UnixNano(), Mode: c.mode}
	c.ripple.Store(r)
	c.seq = reveal.Start([]reveal.Step{{
		After: c.transition,
		Apply: func() { c.ripple.CompareAndSwap(r, nil) },
	}})
}

// Transition returns the active ripple marker, if any.
func (c *Controller) Transition() (Ripple, bool) {
	r := c.ripple.Load()
	if r == nil {
		return Ripple{}, false
	}
	return *r, true
}

// Close cancels a pending marker timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != nil {
		c.seq.Stop()
		c.seq = nil
	}
}

// Provider is created once at process start and hands each request a
// controller bound to that visitor's cookie.
type Provider struct {
	key        string
	transition time.Duration
	fallback   PreferenceSource
}

// NewProvider returns a provider. fallback is consulted when the request
// carries no color-scheme hint.
func NewProvider(key string, transition time.Duration, fallback PreferenceSource) *Provider {
	if key == "" {
		key = DefaultKey
	}
	if transition <= 0 {
		transition = DefaultTransition
	}
	return &Provider{key: key, transition: transition, fallback: fallback}
}

// Key is the cookie name the preference is stored under.
func (p *Provider) Key() string {
	return p.key
}

// For builds the controller for a single request.
func (p *Provider) For(c *gin.Context) *Controller {
	prefs := Chain{HeaderSource{Header: c.Request.Header}, p.fallback}
	return NewController(NewCookieStore(c), prefs, WithKey(p.key), WithTransition(p.transition))
}
