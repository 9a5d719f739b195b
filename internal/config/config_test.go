package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "TABLE_PREFIX", "LLM_HISTORY_SIZE", "IDLE_SAVE_DELAY", "LLM_TEMPERATURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if cfg.LLMHistorySize != 4 {
		t.Errorf("LLMHistorySize = %d, want 4", cfg.LLMHistorySize)
	}
	if cfg.IdleSaveDelay != time.Second {
		t.Errorf("IdleSaveDelay = %v, want 1s", cfg.IdleSaveDelay)
	}
	if cfg.LLMTemperature != 0.1 {
		t.Errorf("LLMTemperature = %v, want 0.1", cfg.LLMTemperature)
	}
	if !cfg.Debug {
		t.Error("Debug should default to true outside prod")
	}
}

func TestLoad_TablePrefix(t *testing.T) {
	tests := []struct {
		env      string
		override string
		want     string
	}{
		{"prod", "", "prod_"},
		{"test", "", "test_"},
		{"staging", "", "dev_"},
		{"prod", "custom_", "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.override, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("TABLE_PREFIX", tt.override)
			if got := Load().TablePrefix; got != tt.want {
				t.Errorf("TablePrefix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("SESSION_TTL", "forever")

	cfg := Load()
	if cfg.LLMMaxTokens != 8000 {
		t.Errorf("LLMMaxTokens = %d, want 8000", cfg.LLMMaxTokens)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
}

func TestQuotaLocation(t *testing.T) {
	cfg := &Config{QuotaTimezone: "Not/AZone"}
	if cfg.QuotaLocation() != time.UTC {
		t.Error("invalid timezone should fall back to UTC")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"terraai-2024-01-01T00-00-00.log",
		"terraai-2024-01-02T00-00-00.log",
		"terraai-2024-01-03T00-00-00.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest log should be removed")
	}
	for _, n := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should be kept: %v", n, err)
		}
	}
}
