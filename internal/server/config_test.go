package server

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORTFOLIO_ADMIN_UIDS", "uid-a, uid-b")
	t.Setenv("PORTFOLIO_JWKS_URL", "https://auth.example.com/jwks.json")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/portfolio")
	t.Setenv("PORTFOLIO_S3_ENDPOINT", "minio:9000")
	t.Setenv("PORTFOLIO_S3_ACCESS_KEY", "minioadmin")
	t.Setenv("PORTFOLIO_S3_SECRET_KEY", "minioadmin")
	t.Setenv("PORTFOLIO_BUCKET", "portfolio")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.MaxUploadMB != 20 {
		t.Fatalf("unexpected upload ceiling %d", cfg.MaxUploadMB)
	}
	if len(cfg.AllowedSections) != 2 || cfg.AllowedSections[0] != "models" {
		t.Fatalf("unexpected sections %v", cfg.AllowedSections)
	}
	if len(cfg.AdminUIDs) != 2 || cfg.AdminUIDs[1] != "uid-b" {
		t.Fatalf("uid list should be trimmed: %v", cfg.AdminUIDs)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORTFOLIO_ADMIN_UIDS", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected an error for a missing admin list")
	}
}

func TestLoadConfigSectionsNormalized(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORTFOLIO_ALLOWED_SECTIONS", " Models , RESEARCH ,dashboards")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"models", "research", "dashboards"}
	if len(cfg.AllowedSections) != len(want) {
		t.Fatalf("unexpected sections %v", cfg.AllowedSections)
	}
	for i, s := range want {
		if cfg.AllowedSections[i] != s {
			t.Fatalf("unexpected sections %v", cfg.AllowedSections)
		}
	}
	if !cfg.IsAllowedSection("Research") {
		t.Fatalf("section check must be case-insensitive")
	}
}

func TestLoadConfigBadUploadCeiling(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORTFOLIO_MAX_UPLOAD_MB", "-1")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected an error for a negative ceiling")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminUIDs: []string{"uid-a"}}
	if !cfg.IsAdmin("uid-a") {
		t.Fatalf("uid-a should be an admin")
	}
	if cfg.IsAdmin("uid-b") {
		t.Fatalf("uid-b should not be an admin")
	}
}
