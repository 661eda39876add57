// config.go - Environment-sourced configuration for the portfolio backend.
//
// Everything the process needs is read once at startup; the loaded Config is
// immutable afterwards and passed explicitly into the server and its
// collaborators. Missing required values abort startup.
package server

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting for the backend.
type Config struct {
	Addr    string `env:"PORTFOLIO_ADDR" envDefault:":8080"`
	Version string `env:"PORTFOLIO_VERSION" envDefault:"dev"`

	// AdminUIDs is the allow-list of identity-provider UIDs permitted to
	// call the /admin endpoints. One or more, comma-separated.
	AdminUIDs []string `env:"PORTFOLIO_ADMIN_UIDS,required" envSeparator:","`

	// JWKSURL points at the identity provider's published signing keys.
	JWKSURL   string `env:"PORTFOLIO_JWKS_URL,required"`
	JWTIssuer string `env:"PORTFOLIO_JWT_ISSUER"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	S3Endpoint    string `env:"PORTFOLIO_S3_ENDPOINT,required"`
	S3AccessKey   string `env:"PORTFOLIO_S3_ACCESS_KEY,required"`
	S3SecretKey   string `env:"PORTFOLIO_S3_SECRET_KEY,required"`
	Bucket        string `env:"PORTFOLIO_BUCKET,required"`
	PublicBaseURL string `env:"PORTFOLIO_PUBLIC_BASE_URL"`

	AllowedSections []string `env:"PORTFOLIO_ALLOWED_SECTIONS" envDefault:"models,research" envSeparator:","`
	MaxUploadMB     int64    `env:"PORTFOLIO_MAX_UPLOAD_MB" envDefault:"20"`

	AllowedOrigins []string `env:"PORTFOLIO_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogFormat string `env:"PORTFOLIO_LOG_FORMAT"`
	LogLevel  string `env:"PORTFOLIO_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses the environment and normalizes list values.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.AdminUIDs = cleanList(cfg.AdminUIDs, false)
	cfg.AllowedSections = cleanList(cfg.AllowedSections, true)
	cfg.AllowedOrigins = cleanList(cfg.AllowedOrigins, false)

	if len(cfg.AdminUIDs) == 0 {
		return Config{}, fmt.Errorf("PORTFOLIO_ADMIN_UIDS must list at least one UID")
	}
	if len(cfg.AllowedSections) == 0 {
		return Config{}, fmt.Errorf("PORTFOLIO_ALLOWED_SECTIONS must list at least one section")
	}
	if cfg.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("PORTFOLIO_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// IsAdmin reports whether uid is in the configured allow-list.
func (c Config) IsAdmin(uid string) bool {
	for _, u := range c.AdminUIDs {
		if u == uid {
			return true
		}
	}
	return false
}

// IsAllowedSection reports whether section (case-insensitive) is configured.
func (c Config) IsAllowedSection(section string) bool {
	section = strings.ToLower(strings.TrimSpace(section))
	for _, s := range c.AllowedSections {
		if s == section {
			return true
		}
	}
	return false
}

// MaxUploadBytes is the upload ceiling in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * bytesPerMB
}

// cleanList trims entries and drops empty ones; lower forces lowercase, which
// keeps section keys case-insensitive end to end.
func cleanList(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
