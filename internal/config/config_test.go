package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Errorf("expected default llm provider bedrock, got %s", cfg.LLMProvider)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected default history limit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.ReminderDayBefore != 24*time.Hour {
		t.Errorf("expected 24h day-before reminder, got %s", cfg.ReminderDayBefore)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "Gemini ")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("WORKER_COUNT", "8")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("expected normalized provider gemini, got %q", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.UseMemoryQueue {
		t.Error("expected memory queue disabled")
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := Load()

	if cfg.WorkerCount != 2 {
		t.Errorf("expected fallback worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("expected fallback 30s timeout, got %s", cfg.LLMTimeout)
	}
}
