package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "DATA_PATH", "LLM_PROVIDER", "OLLAMA_BASE_URL", "OLLAMA_MODEL", "GEMINI_MODEL", "PORT", "SESSION_TTL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != ":8080" {
		t.Fatalf("port=%q want :8080", cfg.Port)
	}
	if cfg.Env != "local" {
		t.Fatalf("env=%q want local", cfg.Env)
	}
	if cfg.Provider != ProviderOllama {
		t.Fatalf("provider=%q want %q", cfg.Provider, ProviderOllama)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("ttl=%v want 2h", cfg.SessionTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DATA_PATH", "/srv/data.csv")
	t.Setenv("LLM_PROVIDER", "GEMINI")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	t.Setenv("OLLAMA_MODEL", "llama3.1:8b")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "prod" {
		t.Fatalf("env=%q", cfg.Env)
	}
	if cfg.DataPath != "/srv/data.csv" {
		t.Fatalf("data path=%q", cfg.DataPath)
	}
	if cfg.Provider != ProviderGemini {
		t.Fatalf("provider=%q want gemini (lowercased)", cfg.Provider)
	}
	if cfg.OllamaURL != "http://gpu-box:11434" {
		t.Fatalf("ollama url=%q", cfg.OllamaURL)
	}
	if cfg.Model != "llama3.1:8b" {
		t.Fatalf("model=%q", cfg.Model)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Fatalf("gemini model=%q", cfg.GeminiModel)
	}
	if cfg.Port != ":9090" {
		t.Fatalf("port=%q want colon prefix added", cfg.Port)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("ttl=%v", cfg.SessionTTL)
	}
}

func TestLoadPortAlreadyPrefixed(t *testing.T) {
	t.Setenv("PORT", ":7000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != ":7000" {
		t.Fatalf("port=%q", cfg.Port)
	}
}

func TestLoadIgnoresBadSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("ttl=%v want default kept", cfg.SessionTTL)
	}
}
