package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DatabasePath != "naebak.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("TokenDuration = %v", cfg.TokenDuration)
	}
	if cfg.PageSize != 12 || cfg.AdminPageSize != 20 {
		t.Errorf("page sizes = %d/%d", cfg.PageSize, cfg.AdminPageSize)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("NAEBAK_ADDR", ":9999")
	t.Setenv("NAEBAK_DATABASE_PATH", "/tmp/test.db")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DatabasePath != "/tmp/test.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":7070\"\njwt_secret: \"yaml-secret\"\npage_size: 5\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.JWTSecret != "yaml-secret" || cfg.PageSize != 5 {
		t.Errorf("yaml overrides not applied: %#v", cfg)
	}
	// values missing from the file keep their defaults
	if cfg.AdminPageSize != 20 {
		t.Errorf("AdminPageSize = %d", cfg.AdminPageSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
