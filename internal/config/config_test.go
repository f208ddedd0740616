package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/forjafila.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Auth.TokenDuration != 24*time.Hour {
		t.Errorf("token duration = %v, want 24h", cfg.Auth.TokenDuration)
	}
	if cfg.Logging.Mode != "prod" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %s/%s, want prod/info", cfg.Logging.Mode, cfg.Logging.Level)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
database:
  path: /tmp/test.db
auth:
  jwt_secret: segredo
logging:
  level: debug
  mode: dev
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret != "segredo" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	// Untouched keys keep their defaults.
	if cfg.Auth.TokenDuration != 24*time.Hour {
		t.Errorf("token duration = %v, want 24h", cfg.Auth.TokenDuration)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FORJA_JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("jwt secret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.Auth.JWTSecret = "segredo"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"zero token duration", func(c *Config) { c.Auth.TokenDuration = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log mode", func(c *Config) { c.Logging.Mode = "staging" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
