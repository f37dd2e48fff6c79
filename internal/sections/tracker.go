// Package sections works out which page section is currently being read,
// from the scroll offset and each section's box relative to the viewport.
package sections

import "sync"

// ID names a page section. It doubles as the element id and the nav anchor.
type ID string

const (
	Home       ID = "home"
	About      ID = "about"
	Experience ID = "experience"
	Projects   ID = "projects"
	Skills     ID = "skills"
	Contact    ID = "contact"
)

// DefaultOrder is the top-to-bottom order of sections on the page.
var DefaultOrder = []ID{Home, About, Experience, Projects, Skills, Contact}

const (
	// DefaultOffset is the navigation bar height a section must cross.
	DefaultOffset = 100.0
	// DefaultThreshold is the scroll offset under which the first section
	// is always active.
	DefaultThreshold = 100.0
)

// Rect is the vertical extent of a section relative to the viewport top.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Geometry locates a section on the page. ok is false when the section is
// not mounted.
type Geometry interface {
	Bounds(id ID) (Rect, bool)
}

// Layout is a Geometry backed by a map.
type Layout map[ID]Rect

func (l Layout) Bounds(id ID) (Rect, bool) {
	r, ok := l[id]
	return r, ok
}

// Metrics is one scroll sample.
type Metrics struct {
	ScrollY  float64 `json:"scroll_y"`
	Sections Layout  `json:"sections"`
}

// Parse returns the id from order matching s.
func Parse(order []ID, s string) (ID, bool) {
	for _, id := range order {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// Active picks the section crossing the offset line. Near the top of the page
// the first section always wins. Sections are scanned bottom-up so the
// lowest one already scrolled past takes precedence; unknown sections are
// skipped. ok is false when nothing qualifies.
func Active(order []ID, scrollY float64, g Geometry, offset, threshold float64) (ID, bool) {
	if len(order) == 0 {
		return "", false
	}
	if scrollY < threshold {
		return order[0], true
	}
	if g == nil {
		return "", false
	}
	for i := len(order) - 1; i >= 0; i-- {
		r, ok := g.Bounds(order[i])
		if !ok {
			continue
		}
		if r.Top <= offset && r.Bottom > offset {
			return order[i], true
		}
	}
	return "", false
}

// Tracker keeps the active section across scroll samples and notifies
// subscribers when it changes.
type Tracker struct {
	order     []ID
	offset    float64
	threshold float64

	mu     sync.Mutex
	active ID
	subs   map[int]func(ID)
	nextID int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

func WithOffset(px float64) TrackerOption {
	return func(t *Tracker) { t.offset = px }
}

func WithThreshold(px float64) TrackerOption {
	return func(t *Tracker) { t.threshold = px }
}

// NewTracker starts on the first section of order, or of DefaultOrder when
// order is empty.
func NewTracker(order []ID, opts ...TrackerOption) *Tracker {
	if len(order) == 0 {
		order = DefaultOrder
	}
	t := &Tracker{
		order:     append([]ID(nil), order...),
		offset:    DefaultOffset,
		threshold: DefaultThreshold,
		subs:      make(map[int]func(ID)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.active = t.order[0]
	return t
}

// Order returns the tracked sections top to bottom.
func (t *Tracker) Order() []ID {
	return append([]ID(nil), t.order...)
}

// Active returns the current section.
func (t *Tracker) Active() ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// OnScroll recomputes the active section from a sample. When no section
// qualifies the previous one is kept.
func (t *Tracker) OnScroll(m Metrics) ID {
	id, ok := Active(t.order, m.ScrollY, m.Sections, t.offset, t.threshold)

	t.mu.Lock()
	if !ok || id == t.active {
		cur := t.active
		t.mu.Unlock()
		return cur
	}
	t.active = id
	subs := make([]func(ID), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
	return id
}

// Subscribe registers fn for active-section changes. The returned func
// removes it.
func (t *Tracker) Subscribe(fn func(ID)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}
