package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, `{"llm":{"api_key":"k"}}`))
	if cfg.Server.Address != ":10002" {
		t.Fatalf("unexpected default address %q", cfg.Server.Address)
	}
	if cfg.Research.MaxCycles != 5 || cfg.Research.MaxConsecutiveResearch != 3 {
		t.Fatalf("unexpected research defaults: %+v", cfg.Research)
	}
	if cfg.LLM.Model == "" || cfg.LLM.Timeout != 5*time.Minute {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFinalizeModelFallback(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Model: "base"}}
	if got := cfg.FinalizeModelOrDefault(); got != "base" {
		t.Fatalf("expected fallback to base model, got %q", got)
	}
	cfg.LLM.FinalizeModel = "pro"
	if got := cfg.FinalizeModelOrDefault(); got != "pro" {
		t.Fatalf("expected configured finalize model, got %q", got)
	}
}

func TestValidateRejectsMissingKey(t *testing.T) {
	cfg := &Config{
		LLM:      LLMConfig{Model: "m"},
		Research: ResearchConfig{MaxCycles: 1, MaxConsecutiveResearch: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing api key to fail validation")
	}
}

func TestValidateRejectsBadLoopCaps(t *testing.T) {
	cfg := &Config{
		LLM:      LLMConfig{APIKey: "k", Model: "m"},
		Research: ResearchConfig{MaxCycles: 0, MaxConsecutiveResearch: 3},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero max_cycles to fail validation")
	}
}
