// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Catalog source kinds.
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// Default admin credentials, refused in production.
const (
	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Host string `env:"HOST" envDefault:""`
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"portfolio.db"`

	CatalogSource   string `env:"CATALOG_SOURCE" envDefault:"file"`
	CatalogPath     string `env:"CATALOG_PATH" envDefault:"data/projects.json"`
	CatalogURL      string `env:"CATALOG_URL"`
	CatalogPageSize int    `env:"CATALOG_PAGE_SIZE" envDefault:"6"`
	CatalogLocale   string `env:"CATALOG_LOCALE" envDefault:"en"`

	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	ToEmail  string `env:"TO_EMAIL"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// Load parses the environment and checks the result.
func Load() (*Config, error) {
	return load(env.Options{})
}

// Parse reads the environment without validating, so callers can apply
// overrides first.
func Parse() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func load(opts env.Options) (*Config, error) {
	cfg, err := parse(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.CatalogSource {
	case SourceFile:
		if c.CatalogPath == "" {
			return errors.New("CATALOG_PATH must be set for the file source")
		}
	case SourceHTTP:
		if c.CatalogURL == "" {
			return errors.New("CATALOG_URL must be set for the http source")
		}
	case SourceSQLite:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	if c.CatalogPageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.CatalogPageSize)
	}
	if _, err := language.Parse(c.CatalogLocale); err != nil {
		return fmt.Errorf("CATALOG_LOCALE: %w", err)
	}

	if c.IsProduction() {
		if c.AdminUsername == defaultAdminUser || c.AdminPassword == defaultAdminPassword {
			return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set in production")
		}
	}
	return nil
}

// Locale is the parsed CATALOG_LOCALE. Validate has already checked it.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CatalogLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
