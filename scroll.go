package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/Zachkp/folio/internal/sections"
)

// maxSampleBytes bounds one scroll sample, over HTTP or the socket.
const maxSampleBytes = 64 << 10

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// activeRequest is one scroll sample. Current is the section the client
// highlights right now; it is kept when no section qualifies.
type activeRequest struct {
	sections.Metrics
	Current string `json:"current,omitempty"`
}

type activeResponse struct {
	Active  sections.ID `json:"active"`
	Matched bool        `json:"matched"`
}

func (a *App) handleActiveSection(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSampleBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "sample too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	var req activeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metrics"})
		return
	}

	s := a.cfg.Sections
	id, ok := sections.Active(a.order, req.ScrollY, req.Sections, s.NavOffset, s.TopThreshold)
	if !ok {
		id = a.order[0]
		if cur, known := sections.Parse(a.order, req.Current); known {
			id = cur
		}
	}
	c.JSON(http.StatusOK, activeResponse{Active: id, Matched: ok})
}

// sectionSocket serialises writes to one websocket connection. The frame
// loop and the handler both write to it.
type sectionSocket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *sectionSocket) send(id sections.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(activeResponse{Active: id, Matched: true}); err != nil {
		log.Printf("sections: websocket write: %v", err)
	}
}

// handleSectionSocket runs one tracker per connection. Every scroll sample
// goes through the frame throttle; the client hears back only when the
// active section changes.
func (a *App) handleSectionSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("sections: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxSampleBytes)

	s := a.cfg.Sections
	tracker := sections.NewTracker(a.order,
		sections.WithOffset(s.NavOffset),
		sections.WithThreshold(s.TopThreshold),
	)
	frames := sections.NewTickerFrames(s.FrameInterval)
	defer frames.Stop()

	sock := &sectionSocket{conn: conn}
	cancel := tracker.Subscribe(sock.send)
	defer cancel()

	throttle := sections.NewThrottle(frames, func(m sections.Metrics) {
		tracker.OnScroll(m)
	})

	sock.send(tracker.Active())

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("sections: websocket read: %v", err)
			}
			return
		}

		var m sections.Metrics
		if err := json.Unmarshal(msg, &m); err != nil {
			log.Printf("sections: bad sample: %v", err)
			continue
		}
		throttle.Submit(m)
	}
}
