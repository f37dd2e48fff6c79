package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/db"
	"github.com/Zachkp/folio/internal/sections"
	"github.com/Zachkp/folio/internal/theme"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// App holds everything the handlers share. It is built once in serve and
// lives for the whole process.
type App struct {
	cfg     *config.Config
	db      *db.DB
	theme   *theme.Provider
	relay   contact.Relay
	inbox   contact.Inbox
	content Content
	order   []sections.ID
	admin   *Admin
}

func newApp(cfg *config.Config, database *db.DB, relay contact.Relay) (*App, error) {
	content, err := loadContent()
	if err != nil {
		return nil, err
	}

	order := make([]sections.ID, 0, len(cfg.Sections.Order))
	for _, s := range cfg.Sections.Order {
		order = append(order, sections.ID(s))
	}

	a := &App{
		cfg:     cfg,
		db:      database,
		theme:   theme.NewProvider(cfg.Theme.CookieName, cfg.Theme.Transition, theme.EnvSource{}),
		relay:   relay,
		content: content,
		order:   order,
		admin:   newAdmin(database, cfg.Admin),
	}
	if database != nil {
		a.inbox = database
	}
	return a, nil
}

// buildRelay picks the outbound relay for contact messages.
func buildRelay(cfg config.ContactConfig) contact.Relay {
	switch cfg.Relay {
	case config.RelayEmailJS:
		return &contact.EmailJSRelay{
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			Client:     &http.Client{Timeout: cfg.Timeout},
		}
	case config.RelaySMTP:
		return &contact.SMTPRelay{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			To:       cfg.SMTP.To,
		}
	default:
		return contact.LogRelay{}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var templateFuncs = template.FuncMap{
	"ms":    func(d time.Duration) int64 { return d.Milliseconds() },
	"title": titleCase,
}

// Router wires every route.
func (a *App) Router() *gin.Engine {
	r := gin.Default()
	r.SetFuncMap(templateFuncs)
	r.LoadHTMLGlob(a.cfg.Server.Templates)

	r.Static("/images", a.cfg.Server.Images)
	r.Static("/static", a.cfg.Server.Static)

	r.Use(a.admin.trackVisitors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", a.handleHome)
	r.GET("/sections/:id", a.handleSection)
	r.POST("/contact", a.handleContact)
	r.POST("/theme/toggle", a.handleThemeToggle)
	r.GET("/resume", a.handleResume)
	r.GET("/hero/typewriter", a.handleTypewriter)
	r.POST("/api/sections/active", a.handleActiveSection)
	r.GET("/ws/sections", a.handleSectionSocket)

	a.admin.routes(r)
	return r
}

type navItem struct {
	ID     sections.ID
	Label  string
	Active bool
}

func (a *App) nav(active sections.ID) []navItem {
	items := make([]navItem, 0, len(a.order))
	for _, id := range a.order {
		items = append(items, navItem{ID: id, Label: titleCase(string(id)), Active: id == active})
	}
	return items
}

// page builds the data every page template expects. category filters the
// projects section.
func (a *App) page(ctl *theme.Controller, active sections.ID, category string) gin.H {
	if category == "" {
		category = AllCategories
	}
	return gin.H{
		"dark":         ctl.Dark(),
		"themeKey":     a.theme.Key(),
		"content":      a.content,
		"skillGroups":  skillsByCategory(a.content.Skills),
		"projects":     filterProjects(a.content.Projects, category),
		"categories":   projectCategories(a.content.Projects),
		"category":     category,
		"sections":     a.order,
		"nav":          a.nav(active),
		"active":       active,
		"roles":        a.cfg.Hero.Roles,
		"navOffset":    a.cfg.Sections.NavOffset,
		"form":         contact.Form{},
		"errors":       contact.FieldErrors{},
		"dismissAfter": a.cfg.Contact.DismissAfter,
	}
}

func (a *App) handleHome(c *gin.Context) {
	ctl := a.theme.For(c)
	defer ctl.Close()

	active := a.order[0]
	if id, ok := sections.Parse(a.order, c.Query("section")); ok {
		active = id
	}
	c.HTML(http.StatusOK, "index.html", a.page(ctl, active, c.Query("category")))
}

// handleSection returns a single section as an HTMX fragment. The projects
// section takes an optional ?category= filter.
func (a *App) handleSection(c *gin.Context) {
	id, ok := sections.Parse(a.order, c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "unknown section")
		return
	}
	ctl := a.theme.For(c)
	defer ctl.Close()

	c.HTML(http.StatusOK, string(id), a.page(ctl, id, c.Query("category")))
}

// handleContact validates the form and relays it. The response is the form
// fragment, re-rendered with inline errors, a success banner or a failure
// banner.
func (a *App) handleContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	opts := []contact.SessionOption{contact.WithDismissAfter(a.cfg.Contact.DismissAfter)}
	if a.inbox != nil {
		opts = append(opts, contact.WithInbox(a.inbox))
	}
	s := contact.NewSession(a.relay, opts...)
	defer s.Close()
	s.Values = form

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.Contact.Timeout)
	defer cancel()
	s.Submit(ctx)

	status := http.StatusOK
	if len(s.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.HTML(status, "contact-form.html", gin.H{
		"form":         s.Values,
		"errors":       s.Errors,
		"success":      s.Success(),
		"failure":      s.Failure,
		"dismissAfter": s.DismissAfter(),
	})
}

// handleThemeToggle flips the visitor's theme. The optional x/y form values
// are the click position the ripple grows from.
func (a *App) handleThemeToggle(c *gin.Context) {
	ctl := a.theme.For(c)
	defer ctl.Close()

	var origin *theme.Point
	x, errX := strconv.ParseFloat(c.PostForm("x"), 64)
	y, errY := strconv.ParseFloat(c.PostForm("y"), 64)
	if errX == nil && errY == nil {
		origin = &theme.Point{X: x, Y: y}
	}

	mode := ctl.Toggle(origin)
	ripple, rippling := ctl.Transition()

	trigger, err := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": mode.String()},
	})
	if err != nil {
		log.Printf("theme: encoding HX-Trigger: %v", err)
	} else {
		c.Header("HX-Trigger", string(trigger))
	}
	c.HTML(http.StatusOK, "theme-toggle.html", gin.H{
		"dark":       mode == theme.Dark,
		"ripple":     ripple,
		"rippling":   rippling,
		"transition": a.cfg.Theme.Transition,
	})
}

func (a *App) handleResume(c *gin.Context) {
	if _, err := os.Stat(a.cfg.Server.Resume); err != nil {
		log.Printf("resume: %v", err)
		c.String(http.StatusNotFound, "resume not available")
		return
	}
	c.FileAttachment(a.cfg.Server.Resume, "resume.pdf")
}
