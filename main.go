package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/Zachkp/zach-portfolio/internal/catalog"
	"github.com/Zachkp/zach-portfolio/internal/config"
	"github.com/Zachkp/zach-portfolio/internal/contact"
	"github.com/Zachkp/zach-portfolio/internal/store"
)

func main() {
	addr := pflag.String("addr", "", "listen address, overrides HOST/PORT")
	source := pflag.String("source", "", "catalog source: file, http or sqlite")
	data := pflag.String("data", "", "projects file path or URL for the catalog source")
	importPath := pflag.String("import", "", "import a projects file into sqlite before serving")
	pflag.Parse()

	cfg, err := config.Parse()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *source, *data)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if *importPath != "" {
		if err := importProjects(ctx, st, *importPath); err != nil {
			slog.Error("import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
	}

	projects := catalog.New(ctx, catalogSource(cfg, st),
		catalog.WithPageSize(cfg.CatalogPageSize),
		catalog.WithLocale(cfg.Locale()),
	)

	sender := &contact.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		To:       cfg.ToEmail,
	}
	if sender.To == "" {
		sender.To = cfg.SMTPUser
	}

	adm := newAdmin(cfg, st, projects)
	go cleanupLoop(ctx, st)

	listen := cfg.Addr()
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           newRouter(projects, contact.NewService(st, sender), adm),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", listen, "env", cfg.Env, "catalog_source", cfg.CatalogSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}

// newRouter wires every route. The admin area and visitor tracking are
// optional so handlers can be tested without a database.
func newRouter(projects *catalog.Catalog, contacts *contact.Service, adm *admin) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if adm != nil {
		r.Use(adm.visitorTrackingMiddleware())
	}

	r.Static("/static", "./static")
	r.Static("/images", "./images")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": projects.Result().Status})
	})

	api := r.Group("/api")
	api.GET("/projects", projectsHandler(projects))
	api.GET("/categories", categoriesHandler(projects))

	// Contact form submission; accepts form posts and JSON.
	r.POST("/contact", func(c *gin.Context) {
		var form contact.Form
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable form submission"})
			return
		}

		id, err := contacts.Submit(c.Request.Context(), form)
		var fieldErrs contact.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Please correct the errors in the form",
				"fields": fieldErrs,
			})
		case err != nil:
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Sorry, there was an error sending your message. Please try again later.",
			})
		default:
			c.JSON(http.StatusOK, gin.H{
				"id":      id,
				"success": "Thank you for your message! I'll get back to you soon.",
			})
		}
	})

	if adm != nil {
		adm.setupRoutes(r)
	}
	return r
}

func applyFlags(cfg *config.Config, source, data string) {
	if source != "" {
		cfg.CatalogSource = source
	}
	if data == "" {
		return
	}
	if cfg.CatalogSource == config.SourceHTTP {
		cfg.CatalogURL = data
	} else {
		cfg.CatalogPath = data
	}
}

func catalogSource(cfg *config.Config, st *store.Store) catalog.Source {
	switch cfg.CatalogSource {
	case config.SourceHTTP:
		return catalog.HTTPSource{URL: cfg.CatalogURL, Client: &http.Client{Timeout: 15 * time.Second}}
	case config.SourceSQLite:
		return st
	default:
		return catalog.FileSource{Path: cfg.CatalogPath}
	}
}

func importProjects(ctx context.Context, st *store.Store, path string) error {
	doc, err := catalog.FileSource{Path: path}.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := st.ImportDocument(ctx, doc); err != nil {
		return err
	}
	slog.Info("projects imported", "path", path, "projects", len(doc.Projects), "categories", len(doc.Categories))
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
