package contact

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/Zachkp/folio/internal/reveal"
)

// Status is the delivery outcome recorded for a submission.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// FailureText is shown when the relay rejects a message.
const FailureText = "Sorry, there was an error sending your message. Please try again later."

// Inbox keeps a copy of every relayed submission.
type Inbox interface {
	Record(ctx context.Context, f Form, status Status, relayErr error) error
}

// Session is the state behind one contact form: current values, inline
// errors, the in-flight flag and the success banner.
type Session struct {
	relay Relay
	inbox Inbox

	Values  Form
	Errors  FieldErrors
	Failure string

	submitting atomic.Bool
	banner     *reveal.Banner
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithInbox records relayed submissions.
func WithInbox(in Inbox) SessionOption {
	return func(s *Session) { s.inbox = in }
}

// WithDismissAfter sets how long the success banner stays visible.
func WithDismissAfter(d time.Duration) SessionOption {
	return func(s *Session) { s.banner = reveal.NewBanner(d) }
}

func NewSession(relay Relay, opts ...SessionOption) *Session {
	s := &Session{
		relay:  relay,
		Errors: FieldErrors{},
		banner: reveal.NewBanner(reveal.DefaultBannerDelay),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the values and, if they pass, sends them through the
// relay exactly once. It reports whether the message went out.
//
// On success the values are cleared and the banner is shown. On relay
// failure the error is logged, the values are kept for a retry and Failure
// is set.
func (s *Session) Submit(ctx context.Context) bool {
	s.Failure = ""
	s.Errors = s.Values.Validate()
	if len(s.Errors) > 0 {
		return false
	}
	if !s.submitting.CompareAndSwap(false, true) {
		return false
	}
	defer s.submitting.Store(false)

	form := s.Values
	ack, err := s.relay.Send(ctx, form)
	s.record(ctx, form, err)
	if err != nil {
		log.Printf("contact: relay failed for %s: %v", form.Email, err)
		s.Failure = FailureText
		return false
	}

	log.Printf("contact: message sent from %s (%s): %s", form.Name, form.Email, ack.Text)
	s.Values = Form{}
	s.banner.Show()
	return true
}

func (s *Session) record(ctx context.Context, f Form, relayErr error) {
	if s.inbox == nil {
		return
	}
	status := StatusSent
	if relayErr != nil {
		status = StatusFailed
	}
	if err := s.inbox.Record(ctx, f, status, relayErr); err != nil {
		log.Printf("contact: recording message: %v", err)
	}
}

// Submitting reports whether a relay call is in flight.
func (s *Session) Submitting() bool {
	return s.submitting.Load()
}

// Success reports whether the success banner is visible.
func (s *Session) Success() bool {
	return s.banner.Visible()
}

// DismissAfter is the success banner's lifetime.
func (s *Session) DismissAfter() time.Duration {
	return s.banner.Delay()
}

// Close cancels the banner timer.
func (s *Session) Close() {
	s.banner.Close()
}
