package reveal

import "time"

// TypewriterOptions tune the typing cadence.
type TypewriterOptions struct {
	TypeDelay  time.Duration // between typed characters
	EraseDelay time.Duration // between erased characters
	Hold       time.Duration // pause on a fully typed word before erasing
}

// DefaultTypewriterOptions mirrors the hero banner cadence.
func DefaultTypewriterOptions() TypewriterOptions {
	return TypewriterOptions{
		TypeDelay:  100 * time.Millisecond,
		EraseDelay: 50 * time.Millisecond,
		Hold:       1500 * time.Millisecond,
	}
}

// Typewriter builds the steps that type each word character by character,
// hold it, then erase it before moving to the next word. The last word is
// left on screen. emit receives the visible text after every step.
func Typewriter(words []string, opts TypewriterOptions, emit func(string)) []Step {
	var steps []Step
	for i, word := range words {
		runes := []rune(word)
		for n := 1; n <= len(runes); n++ {
			text := string(runes[:n])
			steps = append(steps, Step{
				After: opts.TypeDelay,
				Apply: func() { emit(text) },
			})
		}
		if i == len(words)-1 {
			break
		}
		for n := len(runes) - 1; n >= 0; n-- {
			text := string(runes[:n])
			after := opts.EraseDelay
			if n == len(runes)-1 {
				after = opts.Hold
			}
			steps = append(steps, Step{
				After: after,
				Apply: func() { emit(text) },
			})
		}
	}
	return steps
}
