package theme

import (
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PreferenceSource reports the environment's preferred color scheme.
// ok is false when the source has no opinion.
type PreferenceSource interface {
	PrefersDark() (dark bool, ok bool)
}

// PreferenceFunc adapts a plain function to PreferenceSource.
type PreferenceFunc func() (bool, bool)

func (f PreferenceFunc) PrefersDark() (bool, bool) { return f() }

// Chain asks each source in order and returns the first answer.
type Chain []PreferenceSource

func (c Chain) PrefersDark() (bool, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if dark, ok := src.PrefersDark(); ok {
			return dark, true
		}
	}
	return false, false
}

// ColorSchemeHint is the user agent client hint carrying prefers-color-scheme.
const ColorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

// HeaderSource reads the prefers-color-scheme client hint of a request.
type HeaderSource struct {
	Header http.Header
}

func (s HeaderSource) PrefersDark() (bool, bool) {
	if s.Header == nil {
		return false, false
	}
	switch strings.Trim(strings.ToLower(s.Header.Get(ColorSchemeHint)), `" `) {
	case "dark":
		return true, true
	case "light":
		return false, true
	}
	return false, false
}

// EnvVar overrides the detected scheme for every visitor.
const EnvVar = "FOLIO_COLOR_SCHEME"

// EnvSource reads a light/dark override from the environment.
type EnvSource struct {
	Var    string
	Lookup func(string) (string, bool)
}

func (s EnvSource) PrefersDark() (bool, bool) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := s.Var
	if name == "" {
		name = EnvVar
	}
	v, ok := lookup(name)
	if !ok {
		return false, false
	}
	m, ok := ParseMode(strings.ToLower(v))
	if !ok {
		return false, false
	}
	return m == Dark, true
}

// TerminalSource asks the terminal whether its background is dark. It is
// only meaningful for the CLI.
type TerminalSource struct{}

func (TerminalSource) PrefersDark() (bool, bool) {
	return lipgloss.HasDarkBackground(), true
}
