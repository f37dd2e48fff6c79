// admin.go - privacy-conscious visitor tracking and the admin dashboard
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/db"
)

const adminCookie = "admin_token"

// AdminStats is what the dashboard and the JSON export show.
type AdminStats struct {
	Visitors       db.VisitorStats  `json:"visitors"`
	Messages       db.MessageCounts `json:"messages"`
	RecentVisitors []db.Visit       `json:"recent_visitors"`
	RecentMessages []db.Message     `json:"recent_messages"`
}

// Admin owns the session token and the IP hashing salt. Both are random per
// process, so a restart logs everyone out and visitor hashes are not
// linkable across restarts.
//
// In release mode the dashboard is only mounted when credentials are
// configured; the development defaults never guard the inbox in production.
type Admin struct {
	db        *db.DB
	disabled  bool
	token     string
	salt      string
	username  string
	password  string
	retention time.Duration
}

func newAdmin(database *db.DB, cfg config.AdminConfig) *Admin {
	a := &Admin{
		db:        database,
		token:     generateAdminToken(),
		salt:      generateAdminToken(),
		username:  cfg.Username,
		password:  cfg.Password,
		retention: cfg.Retention,
	}

	if gin.Mode() == gin.ReleaseMode && (a.username == "" || a.password == "") {
		log.Println("WARNING: Admin dashboard disabled. Set FOLIO_ADMIN__USERNAME and FOLIO_ADMIN__PASSWORD to enable it.")
		a.disabled = true
	}

	// Default credentials for development
	if a.username == "" {
		a.username = "admin"
		if gin.Mode() == gin.DebugMode {
			log.Println("WARNING: Using default admin username. Set FOLIO_ADMIN__USERNAME.")
		}
	}
	if a.password == "" {
		a.password = "admin123"
		if gin.Mode() == gin.DebugMode {
			log.Println("WARNING: Using default admin password. Set FOLIO_ADMIN__PASSWORD.")
		}
	}
	if a.retention <= 0 {
		a.retention = 365 * 24 * time.Hour
	}
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate admin token:", err)
	}
	return hex.EncodeToString(bytes)
}

// hashIP hashes a client address with the process salt. The result is
// stable per IP for the life of the process.
func (a *Admin) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *Admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *Admin) checkCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func untracked(path string) bool {
	for _, prefix := range []string{"/static/", "/images/", "/admin/", "/favicon", "/privacy", "/ws/", "/api/", "/healthz", "/hero/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// trackVisitors records page views with hashed IPs. Static files, admin
// pages and background endpoints are skipped, and so is anyone sending DNT.
func (a *Admin) trackVisitors() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if a.db == nil || untracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := a.hashIP(c.ClientIP())
		ua := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.db.RecordVisit(ctx, hashed, ua, path, time.Now()); err != nil {
				log.Printf("admin: %v", err)
			}
		}()
		c.Next()
	}
}

// pruneVisits drops visitor records older than the retention window.
func (a *Admin) pruneVisits(ctx context.Context) (int64, error) {
	if a.db == nil {
		return 0, nil
	}
	n, err := a.db.PruneVisits(ctx, time.Now().Add(-a.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Privacy cleanup: removed %d visitor records older than %v", n, a.retention)
	}
	return n, nil
}

func (a *Admin) stats(ctx context.Context) (*AdminStats, error) {
	if a.db == nil {
		return nil, fmt.Errorf("no database configured")
	}
	var (
		s   AdminStats
		err error
	)
	if s.Visitors, err = a.db.VisitorStats(ctx, time.Now()); err != nil {
		return nil, err
	}
	if s.Messages, err = a.db.CountMessages(ctx); err != nil {
		return nil, err
	}
	if s.RecentVisitors, err = a.db.RecentVisits(ctx, 50); err != nil {
		return nil, err
	}
	if s.RecentMessages, err = a.db.Messages(ctx, 10); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *Admin) routes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":         "Privacy Policy",
			"retentionDays": int(a.retention.Hours() / 24),
		})
	})

	if a.disabled {
		return
	}

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			log.Printf("Failed admin login attempt from %s", a.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
		log.Printf("Admin login successful from %s", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	g := r.Group("/admin")
	g.Use(a.authMiddleware())

	g.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	g.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	g.GET("/messages", func(c *gin.Context) {
		if a.db == nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "No database configured"})
			return
		}
		messages, err := a.db.Messages(c.Request.Context(), 200)
		if err != nil {
			log.Printf("Error loading messages: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load messages",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
		})
	})

	g.DELETE("/messages/:id", func(c *gin.Context) {
		if a.db == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No database configured"})
			return
		}
		id := c.Param("id")
		ok, err := a.db.DeleteMessage(c.Request.Context(), id)
		if err != nil {
			log.Printf("Error deleting message %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		log.Printf("Message %s deleted by admin from %s", id, a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
	})

	g.GET("/visitors", func(c *gin.Context) {
		if a.db == nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "No database configured"})
			return
		}
		visitors, err := a.db.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	g.POST("/privacy/prune", func(c *gin.Context) {
		n, err := a.pruneVisits(c.Request.Context())
		if err != nil {
			log.Printf("Error pruning visitors: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	g.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		log.Printf("Admin stats exported by %s", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
