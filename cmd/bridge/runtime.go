package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Kevin16883/Bridge-sub000/internal/assist"
	"github.com/Kevin16883/Bridge-sub000/internal/config"
	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/logging"
)

// loadConfig reads the config and installs the default logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newAssistant builds the completion client for cfg. The caller closes the client.
func newAssistant(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*assist.Assistant, llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM.ClientConfig(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	logger.Debug("completion client ready", "provider", cfg.LLM.Provider, "model", client.Model())
	return assist.New(client, logger), client, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// readInput joins args, or reads r when args is empty or a single "-"
func readInput(args []string, r io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
