package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/plantview/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg != Default() {
		t.Error("Load(\"\") should return the defaults unchanged")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantview.toml")
	content := `
max_content_chars = 1000
debounce_ms = 250
engine_base_url = "http://plantuml:8080"
slot_backend = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxContentChars != 1000 {
		t.Errorf("MaxContentChars = %d, want 1000", cfg.MaxContentChars)
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce() = %v, want 250ms", cfg.Debounce())
	}
	if cfg.EngineBaseURL != "http://plantuml:8080" {
		t.Errorf("EngineBaseURL = %q", cfg.EngineBaseURL)
	}
	// Untouched fields keep their defaults.
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative max chars", "max_content_chars = -1"},
		{"zero timeout", "request_timeout_s = 0"},
		{"unknown backend", `slot_backend = "dynamo"`},
		{"redis without addr", `slot_backend = "redis"`},
		{"mongo without uri", `slot_backend = "mongo"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plantview.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil, want INVALID_CONFIG")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %s, want INVALID_CONFIG", errors.GetCode(err))
	}
}
