// admin.go - privacy-conscious visitor tracking and the admin API
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-portfolio/internal/catalog"
	"github.com/Zachkp/zach-portfolio/internal/config"
	"github.com/Zachkp/zach-portfolio/internal/store"
)

// Visitor data older than this is deleted.
const visitorRetention = 12 * 30 * 24 * time.Hour

type adminStats struct {
	*store.Stats
	CatalogStatus catalog.Status `json:"catalog_status"`
	CatalogError  string         `json:"catalog_error,omitempty"`
}

type admin struct {
	token    string
	salt     string
	username string
	password string
	store    *store.Store
	projects *catalog.Catalog
	now      func() time.Time
}

func newAdmin(cfg *config.Config, st *store.Store, projects *catalog.Catalog) *admin {
	a := &admin{
		token:    generateToken(),
		salt:     generateToken(),
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		store:    st,
		projects: projects,
		now:      time.Now,
	}

	slog.Info("admin access available", "path", "/admin/login")
	if !cfg.IsProduction() {
		slog.Debug("admin token (dev only)", "token", a.token)
	}
	slog.Info("visitor tracking enabled with hashed IP addresses")
	return a
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("generate admin token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Hash IP address for privacy compliance (consistent per IP and process)
func (a *admin) hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(hash[:])[:16]
}

func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// Skip tracking for static files and admin pages
func trackable(path string) bool {
	for _, prefix := range []string{"/static/", "/images/", "/admin/", "/favicon", "/healthz"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func (a *admin) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !trackable(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  a.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: a.now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.RecordVisit(ctx, visit); err != nil {
				slog.Warn("record visitor", "error", err)
			}
		}()
		c.Next()
	}
}

func (a *admin) stats(ctx context.Context) (*adminStats, error) {
	stats, err := a.store.Stats(ctx, a.now())
	if err != nil {
		return nil, err
	}
	out := &adminStats{Stats: stats, CatalogStatus: a.projects.Result().Status}
	if err := a.projects.Err(); err != nil {
		out.CatalogError = err.Error()
	}
	return out, nil
}

func (a *admin) setupRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
		if !userOK || !passOK {
			slog.Warn("failed admin login", "visitor", a.hashIP(c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		c.SetCookie("admin_token", a.token, 3600*24, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		slog.Info("admin login", "visitor", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	group := r.Group("/admin")
	group.Use(a.authMiddleware())

	group.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			slog.Error("load admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	group.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": visitors})
	})

	group.GET("/messages", func(c *gin.Context) {
		messages, err := a.store.RecentMessages(c.Request.Context(), 200)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	})

	group.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.store.CleanupVisits(c.Request.Context(), a.now().Add(-visitorRetention))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})

	// Statistics export (for backups or analysis)
	group.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		slog.Info("admin stats exported", "visitor", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}

// cleanupLoop removes expired visitor data at startup and then daily.
func cleanupLoop(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		removed, err := st.CleanupVisits(ctx, time.Now().Add(-visitorRetention))
		if err != nil {
			slog.Warn("privacy cleanup", "error", err)
		} else if removed > 0 {
			slog.Info("privacy cleanup", "removed", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
