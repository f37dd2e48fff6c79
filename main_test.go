package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/db"
	"github.com/Zachkp/folio/internal/sections"
	"github.com/Zachkp/folio/internal/theme"
)

type fakeRelay struct {
	mu    sync.Mutex
	forms []contact.Form
	err   error
}

func (r *fakeRelay) Send(_ context.Context, f contact.Form) (contact.Ack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms = append(r.forms, f)
	if r.err != nil {
		return contact.Ack{}, r.err
	}
	return contact.Ack{Text: "OK"}, nil
}

func (r *fakeRelay) calls() []contact.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contact.Form(nil), r.forms...)
}

func setupTest(t *testing.T, relay contact.Relay) (*App, *gin.Engine, *db.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.Resume = filepath.Join(t.TempDir(), "resume.pdf")
	cfg.Hero.Roles = []string{"Go"}
	cfg.Hero.TypeDelay = time.Millisecond
	cfg.Hero.EraseDelay = time.Millisecond
	cfg.Hero.Hold = time.Millisecond
	cfg.Admin.Username = "owner"
	cfg.Admin.Password = "s3cret"

	app, err := newApp(cfg, database, relay)
	require.NoError(t, err)
	return app, app.Router(), database
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealthz(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHomeRendersAllSections(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, id := range sections.DefaultOrder {
		assert.Contains(t, body, `<section id="`+string(id)+`"`)
	}
	assert.Contains(t, body, "<strong>useful</strong>")
	assert.NotContains(t, body, `<html lang="en" class="dark">`)
}

func TestHomeTheme(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		hint   string
		dark   bool
	}{
		{name: "nothing stored", dark: false},
		{name: "cookie dark", cookie: "dark", dark: true},
		{name: "hint dark", hint: "dark", dark: true},
		{name: "cookie light beats hint", cookie: "light", hint: "dark", dark: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r, _ := setupTest(t, &fakeRelay{})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "theme", Value: tt.cookie})
			}
			if tt.hint != "" {
				req.Header.Set(theme.ColorSchemeHint, tt.hint)
			}
			w := do(r, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.dark, strings.Contains(w.Body.String(), `<html lang="en" class="dark">`))
		})
	}
}

func TestHomeActiveSectionFromQuery(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/?section=projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `href="#projects" data-section="projects"\s+class="text-indigo-500 font-semibold"`, w.Body.String())
}

func TestSectionFragment(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})

	w := do(r, httptest.NewRequest(http.MethodGet, "/sections/experience", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<section id="experience"`)
	assert.NotContains(t, w.Body.String(), "<html")

	w = do(r, httptest.NewRequest(http.MethodGet, "/sections/blog", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThemeToggle(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})

	w := do(r, postForm("/theme/toggle", url.Values{"x": {"120"}, "y": {"40"}}))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "theme", cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
	assert.Contains(t, w.Header().Get("HX-Trigger"), `"theme":"dark"`)
	assert.Contains(t, w.Body.String(), "theme-ripple dark")
	assert.Contains(t, w.Body.String(), `data-duration="1500"`)

	req := postForm("/theme/toggle", url.Values{})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	w = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "light", w.Result().Cookies()[0].Value)
	assert.NotContains(t, w.Body.String(), "theme-ripple", "no origin, no ripple")
}

func TestContactEmptyNameBlocksRelay(t *testing.T) {
	relay := &fakeRelay{}
	_, r, database := setupTest(t, relay)

	w := do(r, postForm("/contact", url.Values{
		"name":    {""},
		"email":   {"ada@example.com"},
		"message": {"Hello"},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required")
	assert.NotContains(t, w.Body.String(), "Email is")
	assert.NotContains(t, w.Body.String(), "Message is required")
	assert.Contains(t, w.Body.String(), `value="ada@example.com"`)
	assert.Empty(t, relay.calls())

	counts, err := database.CountMessages(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
}

func TestContactValidSendsOnce(t *testing.T) {
	relay := &fakeRelay{}
	_, r, database := setupTest(t, relay)

	w := do(r, postForm("/contact", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"message": {"Hello there"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	calls := relay.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, contact.Form{Name: "Ada", Email: "ada@example.com", Message: "Hello there"}, calls[0])

	body := w.Body.String()
	assert.Contains(t, body, "Thank you!")
	assert.Contains(t, body, `data-dismiss-after="3000"`)
	assert.NotContains(t, body, `value="Ada"`, "fields are cleared")

	counts, err := database.CountMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Sent)
}

func TestContactRelayFailure(t *testing.T) {
	relay := &fakeRelay{err: errors.New("service unavailable")}
	_, r, database := setupTest(t, relay)

	w := do(r, postForm("/contact", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"message": {"Hello there"},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, relay.calls(), 1)

	body := w.Body.String()
	assert.Contains(t, body, contact.FailureText)
	assert.Contains(t, body, `value="Ada"`, "values kept for a retry")
	assert.NotContains(t, body, "Thank you!")

	msgs, err := database.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, contact.StatusFailed, msgs[0].Status)
	assert.Equal(t, "service unavailable", msgs[0].Error)
}

func postJSON(r http.Handler, path string, v any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(v)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return do(r, req)
}

func TestActiveSectionAPI(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})

	tests := []struct {
		name    string
		payload map[string]any
		want    sections.ID
		matched bool
	}{
		{
			name: "near the top",
			payload: map[string]any{
				"scroll_y": 20,
				"sections": map[string]any{"skills": map[string]float64{"top": 0, "bottom": 500}},
			},
			want: sections.Home, matched: true,
		},
		{
			name: "band containing the offset",
			payload: map[string]any{
				"scroll_y": 900,
				"sections": map[string]any{
					"about":      map[string]float64{"top": -600, "bottom": 50},
					"experience": map[string]float64{"top": 50, "bottom": 700},
				},
			},
			want: sections.Experience, matched: true,
		},
		{
			name: "nothing qualifies keeps current",
			payload: map[string]any{
				"scroll_y": 900,
				"sections": map[string]any{"about": map[string]float64{"top": 300, "bottom": 700}},
				"current":  "projects",
			},
			want: sections.Projects, matched: false,
		},
		{
			name: "nothing qualifies and no current",
			payload: map[string]any{
				"scroll_y": 900,
				"sections": map[string]any{},
			},
			want: sections.Home, matched: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/sections/active", tt.payload)
			require.Equal(t, http.StatusOK, w.Code)

			var resp activeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Active)
			assert.Equal(t, tt.matched, resp.Matched)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/sections/active", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, do(r, req).Code)
}

func TestSectionSocket(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sections"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg activeResponse
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, sections.Home, msg.Active)

	sample := sections.Metrics{
		ScrollY:  1200,
		Sections: sections.Layout{sections.Skills: {Top: 40, Bottom: 600}},
	}
	require.NoError(t, conn.WriteJSON(sample))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, sections.Skills, msg.Active)
}

func TestTypewriterStream(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	server := httptest.NewServer(r)
	defer server.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(server.URL + "/hero/typewriter")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	stream := string(body)
	first := strings.Index(stream, "data:G\n")
	second := strings.Index(stream, "data:Go\n")
	require.True(t, first >= 0 && second > first, "frames out of order: %q", stream)
	assert.Contains(t, stream, "event:done")
}

func TestResume(t *testing.T) {
	app, r, _ := setupTest(t, &fakeRelay{})

	w := do(r, httptest.NewRequest(http.MethodGet, "/resume", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, os.WriteFile(app.cfg.Server.Resume, []byte("%PDF-1.4"), 0o644))
	w = do(r, httptest.NewRequest(http.MethodGet, "/resume", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resume.pdf")
}

func TestAdminRequiresLogin(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	for _, path := range []string{"/admin/dashboard", "/admin/messages", "/admin/api/stats"} {
		w := do(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"), path)
	}
}

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	w := do(r, postForm("/admin/login", url.Values{"username": {"owner"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusFound, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			return c
		}
	}
	t.Fatal("no admin cookie set")
	return nil
}

func TestAdminLogin(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})

	w := do(r, postForm("/admin/login", url.Values{"username": {"owner"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	cookie := login(t, r)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dashboard")
}

func TestAdminMessages(t *testing.T) {
	relay := &fakeRelay{}
	_, r, database := setupTest(t, relay)
	ctx := context.Background()

	do(r, postForm("/contact", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"message": {"Hello there"},
	}))
	msgs, err := database.Messages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	cookie := login(t, r)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(cookie)
	w := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	var stats AdminStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Messages.Total)

	req = httptest.NewRequest(http.MethodGet, "/admin/messages", nil)
	req.AddCookie(cookie)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello there")

	req = httptest.NewRequest(http.MethodDelete, "/admin/messages/"+msgs[0].ID, nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/messages/"+msgs[0].ID, nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusNotFound, do(r, req).Code)
}

func TestVisitorTracking(t *testing.T) {
	_, r, database := setupTest(t, &fakeRelay{})
	ctx := context.Background()

	dnt := httptest.NewRequest(http.MethodGet, "/sections/about", nil)
	dnt.Header.Set("DNT", "1")
	do(r, dnt)
	do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	do(r, req)

	require.Eventually(t, func() bool {
		visits, err := database.RecentVisits(ctx, 10)
		return err == nil && len(visits) == 1
	}, 2*time.Second, 10*time.Millisecond)

	visits, err := database.RecentVisits(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "/", visits[0].Path)
	assert.Len(t, visits[0].HashedIP, 16)
	assert.NotContains(t, visits[0].HashedIP, "203.0.113.7")
}

func TestHashIPStablePerProcess(t *testing.T) {
	a := newAdmin(nil, config.AdminConfig{})
	assert.Equal(t, a.hashIP("198.51.100.1"), a.hashIP("198.51.100.1"))
	assert.NotEqual(t, a.hashIP("198.51.100.1"), a.hashIP("198.51.100.2"))

	b := newAdmin(nil, config.AdminConfig{})
	assert.NotEqual(t, a.hashIP("198.51.100.1"), b.hashIP("198.51.100.1"), "salt is per process")
}

func TestPruneVisits(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	a := newAdmin(database, config.AdminConfig{Retention: 24 * time.Hour})
	require.NoError(t, database.RecordVisit(ctx, "old", "ua", "/", time.Now().Add(-48*time.Hour)))
	require.NoError(t, database.RecordVisit(ctx, "new", "ua", "/", time.Now()))

	n, err := a.pruneVisits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = newAdmin(nil, config.AdminConfig{}).pruneVisits(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildRelay(t *testing.T) {
	cfg := config.DefaultConfig().Contact
	assert.IsType(t, contact.LogRelay{}, buildRelay(cfg))

	cfg.Relay = config.RelayEmailJS
	assert.IsType(t, &contact.EmailJSRelay{}, buildRelay(cfg))

	cfg.Relay = config.RelaySMTP
	assert.IsType(t, &contact.SMTPRelay{}, buildRelay(cfg))
}

func TestSkillsByCategoryKeepsOrder(t *testing.T) {
	groups := skillsByCategory([]Skill{
		{Name: "Go", Category: "backend"},
		{Name: "HTML", Category: "frontend"},
		{Name: "PHP", Category: "backend"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "backend", groups[0].Category)
	assert.Len(t, groups[0].Skills, 2)
	assert.Equal(t, "frontend", groups[1].Category)
}

func TestProjectsCategoryFilter(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})

	tests := []struct {
		query   string
		present []string
		absent  []string
	}{
		{query: "", present: []string{"E-Commerce Platform", "Task Management App", "Inventory API"}},
		{query: "?category=all", present: []string{"E-Commerce Platform", "Company Dashboard", "Inventory API"}},
		{query: "?category=api", present: []string{"Inventory API"}, absent: []string{"E-Commerce Platform", "Task Management App"}},
		{query: "?category=data", present: []string{"Company Dashboard"}, absent: []string{"Inventory API"}},
		{query: "?category=mobile", present: []string{"No projects in this category yet."}, absent: []string{"Inventory API"}},
	}
	for _, tt := range tests {
		t.Run("projects"+tt.query, func(t *testing.T) {
			w := do(r, httptest.NewRequest(http.MethodGet, "/sections/projects"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			for _, p := range tt.present {
				assert.Contains(t, body, p)
			}
			for _, p := range tt.absent {
				assert.NotContains(t, body, p)
			}
			assert.Contains(t, body, `hx-get="/sections/projects?category=backend"`)
		})
	}
}

func TestFilterProjects(t *testing.T) {
	assert.Len(t, filterProjects(Projects, AllCategories), len(Projects))
	assert.Len(t, filterProjects(Projects, ""), len(Projects))
	for _, p := range filterProjects(Projects, "frontend") {
		assert.Contains(t, p.Categories, "frontend")
	}
	assert.Equal(t, []string{"frontend", "backend", "data", "api"}, projectCategories(Projects))
}

func TestAdminDisabledInReleaseWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	app, err := newApp(config.DefaultConfig(), nil, &fakeRelay{})
	require.NoError(t, err)
	r := app.Router()

	w := do(r, postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	for _, path := range []string{"/admin/login", "/admin/dashboard", "/admin/messages", "/admin/export/stats"} {
		w := do(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w = do(r, httptest.NewRequest(http.MethodGet, "/privacy", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	cfg := config.DefaultConfig()
	cfg.Admin.Username = "owner"
	cfg.Admin.Password = "s3cret"
	app, err = newApp(cfg, nil, &fakeRelay{})
	require.NoError(t, err)
	w = do(app.Router(), httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminDefaultCredentialsOutsideRelease(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newAdmin(nil, config.AdminConfig{})
	assert.False(t, a.disabled)
	assert.True(t, a.checkCredentials("admin", "admin123"))
}

func TestActiveSectionRejectsOversizedSample(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	body := `{"scroll_y": 1, "current": "` + strings.Repeat("x", maxSampleBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sections/active", strings.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, req).Code)
}

func TestSectionSocketFirstSampleBeforeScrolling(t *testing.T) {
	_, r, _ := setupTest(t, &fakeRelay{})
	server := httptest.NewServer(r)
	defer server.Close()

	// A page opened on #contact reports its position as soon as the socket opens.
	w := do(r, httptest.NewRequest(http.MethodGet, "/static/js/folio.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ws.onopen = () => ws.send(JSON.stringify(metrics()))")

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sections"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	require.NoError(t, conn.WriteJSON(sections.Metrics{
		ScrollY:  3000,
		Sections: sections.Layout{sections.Contact: {Top: 0, Bottom: 800}},
	}))

	var msg activeResponse
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, sections.Home, msg.Active)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, sections.Contact, msg.Active)
}
