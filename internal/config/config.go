// Package config loads server settings from flags and the environment. A
// local .env file is honored when present.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider selects the chat-model backend.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string
	Env      string
	DataPath string

	Provider    string
	OllamaURL   string
	Model       string
	GeminiModel string

	SessionTTL time.Duration
}

// Defaults applied when neither flags nor environment set a value.
const (
	defaultPort       = ":8080"
	defaultDataPath   = "data/retail_transactions.csv"
	defaultOllamaURL  = "http://localhost:11434"
	defaultModel      = "llama3.2:3b"
	defaultGemini     = "gemini-2.0-flash"
	defaultSessionTTL = 2 * time.Hour
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        defaultPort,
		Env:         firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local"),
		DataPath:    firstNonEmpty(os.Getenv("DATA_PATH"), defaultDataPath),
		Provider:    firstNonEmpty(strings.ToLower(os.Getenv("LLM_PROVIDER")), ProviderOllama),
		OllamaURL:   firstNonEmpty(os.Getenv("OLLAMA_BASE_URL"), defaultOllamaURL),
		Model:       firstNonEmpty(os.Getenv("OLLAMA_MODEL"), defaultModel),
		GeminiModel: firstNonEmpty(os.Getenv("GEMINI_MODEL"), defaultGemini),
		SessionTTL:  defaultSessionTTL,
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			cfg.Port = envPort
		} else {
			cfg.Port = ":" + envPort
		}
	}

	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
