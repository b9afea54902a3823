package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"retailiq/internal/agent"
	"retailiq/internal/cli"
	"retailiq/internal/config"
	"retailiq/internal/dataset"
	"retailiq/internal/llmclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("loading dataset from %s: %w", cfg.DataPath, err)
	}

	llm, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("building llm client: %w", err)
	}
	defer llm.Close()
	llm = llmclient.Chain(llm, llmclient.WithLogging(logger))

	app := &cli.App{
		Cfg:   cfg,
		Agent: agent.New(ds, llm, logger),
		LLM:   llm,
		Log:   logger,
	}
	return cli.NewRootCmd(app).Execute()
}

func buildClient(cfg *config.Config) (llmclient.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return llmclient.NewGeminiClient(context.Background(), cfg.GeminiModel)
	case config.ProviderOllama:
		return llmclient.NewOllamaClient(cfg.OllamaURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", cfg.Provider, config.ProviderOllama, config.ProviderGemini)
	}
}
