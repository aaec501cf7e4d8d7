package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CaptureLocale != "pt-PT" {
		t.Errorf("CaptureLocale = %q, want pt-PT", cfg.CaptureLocale)
	}
	if cfg.StorageBackend != "file" {
		t.Errorf("StorageBackend = %q, want file", cfg.StorageBackend)
	}
	if cfg.InterpretTimeout != 30*time.Second {
		t.Errorf("InterpretTimeout = %v, want 30s", cfg.InterpretTimeout)
	}
	if cfg.NoticeTTL != 5*time.Second {
		t.Errorf("NoticeTTL = %v, want 5s", cfg.NoticeTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("INTERPRET_TIMEOUT", "10s")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if cfg.InterpretTimeout != 10*time.Second {
		t.Errorf("InterpretTimeout = %v, want 10s", cfg.InterpretTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = " " }, true},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, true},
		{"zero timeout", func(c *Config) { c.InterpretTimeout = 0 }, true},
		{"zero notice ttl", func(c *Config) { c.NoticeTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
