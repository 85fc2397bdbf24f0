package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TARGET_SERVER", "API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"CANVAS_NAME", "CANVASES_FILE", "POLL_INTERVAL",
		"LOGGING", "STATUS_PORT", "STUCK_REPORT_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
	if !cfg.LoggingEnabled {
		t.Error("logging should default to enabled")
	}
	if cfg.StuckReportSchedule != "0 * * * *" {
		t.Errorf("StuckReportSchedule = %q", cfg.StuckReportSchedule)
	}
	if cfg.StatusPort != "" {
		t.Errorf("StatusPort should default to empty, got %q", cfg.StatusPort)
	}
}

func TestLoadSchemePrefix(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"bare host", "canvus.example.com", "https://canvus.example.com"},
		{"https kept", "https://canvus.example.com", "https://canvus.example.com"},
		{"http kept", "http://localhost:3000", "http://localhost:3000"},
		{"whitespace trimmed", "  canvus.example.com  ", "https://canvus.example.com"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TARGET_SERVER", tt.value)
			if got := Load().TargetServer; got != tt.want {
				t.Errorf("TargetServer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1/")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("LOGGING", "0")
	t.Setenv("STATUS_PORT", "9090")

	cfg := Load()
	if cfg.OpenAIBaseURL != "http://localhost:8080/v1" {
		t.Errorf("trailing slash should be stripped, got %q", cfg.OpenAIBaseURL)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.LoggingEnabled {
		t.Error("LOGGING=0 should disable logging")
	}
	if cfg.StatusPort != "9090" {
		t.Errorf("StatusPort = %q", cfg.StatusPort)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("LOGGING", "maybe")

	cfg := Load()
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("invalid POLL_INTERVAL should fall back to 2s, got %v", cfg.PollInterval)
	}
	if !cfg.LoggingEnabled {
		t.Error("invalid LOGGING should fall back to enabled")
	}
}

func TestLoadNegativeIntervalFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLL_INTERVAL", "-5s")
	if got := Load().PollInterval; got != 2*time.Second {
		t.Errorf("negative POLL_INTERVAL should fall back to 2s, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TargetServer: "https://canvus.example.com",
			APIKey:       "token",
			OpenAIAPIKey: "sk-test",
			CanvasName:   "Test",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing target server", func(c *Config) { c.TargetServer = "" }},
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }},
		{"no canvas target", func(c *Config) { c.CanvasName = ""; c.CanvasesFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	t.Run("canvases file satisfies target requirement", func(t *testing.T) {
		cfg := valid()
		cfg.CanvasName = ""
		cfg.CanvasesFile = "/etc/canvaspilot/canvases.json"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLoadCanvases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvases.json")
	content := `{"canvases":[{"name":"Board One"},{"name":"  "},{"name":"Board Two"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadCanvases(path)
	if err != nil {
		t.Fatalf("LoadCanvases failed: %v", err)
	}
	want := []string{"Board One", "Board Two"}
	if !reflect.DeepEqual(cfg.Names(), want) {
		t.Errorf("Names() = %v, want %v", cfg.Names(), want)
	}
}

func TestLoadCanvasesErrors(t *testing.T) {
	if _, err := LoadCanvases(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCanvases(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestTargets(t *testing.T) {
	targets := NewTargets("A", "B")
	if got := targets.Get(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("Get() = %v", got)
	}

	snapshot := targets.Get()
	targets.Set([]string{"C"})
	if !reflect.DeepEqual(snapshot, []string{"A", "B"}) {
		t.Error("Set must not mutate previously returned snapshots")
	}
	if got := targets.Get(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("Get() after Set = %v", got)
	}
}
