package main

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/reveal"
)

// handleTypewriter streams the hero roles as server-sent events. Each event
// carries the visible text; a final "done" event closes the stream. The
// sequence stops as soon as the client goes away.
func (a *App) handleTypewriter(c *gin.Context) {
	ctx := c.Request.Context()
	h := a.cfg.Hero
	opts := reveal.TypewriterOptions{
		TypeDelay:  h.TypeDelay,
		EraseDelay: h.EraseDelay,
		Hold:       h.Hold,
	}

	frames := make(chan string, 16)
	seq := reveal.Start(reveal.Typewriter(h.Roles, opts, func(text string) {
		select {
		case frames <- text:
		case <-ctx.Done():
		}
	}))
	defer seq.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case text := <-frames:
			c.SSEvent("frame", text)
			return true
		case <-seq.Done():
			for {
				select {
				case text := <-frames:
					c.SSEvent("frame", text)
				default:
					c.SSEvent("done", "")
					return false
				}
			}
		}
	})
}
