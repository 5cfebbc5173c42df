package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkcast/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[llm]
model = "gpt-4o-mini"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("expected default provider openai, got %q", cfg.LLM.Provider)
	}
	if cfg.Translation.ChunkRetries != 5 {
		t.Fatalf("expected default chunk retries 5, got %d", cfg.Translation.ChunkRetries)
	}
	if !filepath.IsAbs(cfg.Paths.InboxDir) {
		t.Fatalf("expected inbox dir to be absolute, got %q", cfg.Paths.InboxDir)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "parrot"
model = "m"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "llm.provider") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestLoadRequiresModel(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv(config.EnvLLMModel, "")
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when model missing")
	}
	if !strings.Contains(err.Error(), "llm.model") {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestLoadRejectsBadVariance(t *testing.T) {
	path := writeConfig(t, `
[llm]
model = "m"

[translation]
max_variance = 1.5
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for variance outside [0, 1)")
	}
}

func TestNormalizeTrimsBaseURL(t *testing.T) {
	path := writeConfig(t, `
[llm]
model = "m"
base_url = "https://api.example.com/v1/"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.BaseURL != "https://api.example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.LLM.BaseURL)
	}
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	t.Setenv(config.EnvLLMModel, "env-model")
	cfg, _, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.LLM.Model != "env-model" {
		t.Fatalf("expected env model override, got %q", cfg.LLM.Model)
	}
}
