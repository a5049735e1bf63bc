package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_DRIVER", "DB_URL", "DB_USERNAME", "DB_PASSWORD",
		"JWT_SECRET", "JWT_TTL_HOURS", "ADMIN_PASSWORD_HASH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.DBURL != "data/novels.db" {
		t.Errorf("Expected default db url, got %s", cfg.DBURL)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("Expected 24h ttl, got %v", cfg.JWTTTL)
	}
	if cfg.LogLevel != log.InfoLevel || cfg.LogFormat != "text" {
		t.Errorf("Unexpected log settings: %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.AuthEnabled() {
		t.Error("Expected auth to be disabled without JWT_SECRET")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "org.postgresql.Driver")
	t.Setenv("DB_URL", "postgres://localhost/library")
	t.Setenv("DB_USERNAME", "reader")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBDriver != "org.postgresql.Driver" || cfg.DBUsername != "reader" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("Expected 2h ttl, got %v", cfg.JWTTTL)
	}
	if cfg.LogLevel != log.DebugLevel || cfg.LogFormat != "json" {
		t.Errorf("Unexpected log settings: %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.AuthEnabled() {
		t.Error("Expected auth to be enabled")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"ttl":        {"JWT_TTL_HOURS": "soon"},
		"zero ttl":   {"JWT_TTL_HOURS": "0"},
		"level":      {"LOG_LEVEL": "loud"},
		"format":     {"LOG_FORMAT": "xml"},
		"hash alone": {"ADMIN_PASSWORD_HASH": "$argon2id$..."},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
