package quyche

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	quyche "github.com/lacviet-ai/quyche"
	"github.com/lacviet-ai/quyche/pkg/config"
	"github.com/lacviet-ai/quyche/pkg/corpus"
	"github.com/lacviet-ai/quyche/pkg/llm"
	"github.com/lacviet-ai/quyche/pkg/telemetry"
)

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// buildClient wires the retrieval client from loaded config.
func buildClient(cfg *config.Config, logger *slog.Logger) (*quyche.Client, error) {
	var recorder *telemetry.Recorder
	if cfg.Telemetry.ParquetPath != "" {
		var err error
		recorder, err = telemetry.NewRecorder(cfg.Telemetry.ParquetPath, 0, logger)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
			recorder = nil
		}
	}

	clientConfig := quyche.Config{
		Corpus: corpus.Paths{
			CorpusDir:    cfg.Corpus.Dir,
			EntitiesFile: cfg.Corpus.EntitiesFile,
			TreeDir:      cfg.Corpus.TreeDir,
		},
		LLM: llm.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
		Breaker: llm.BreakerConfig{
			Enabled:          cfg.CircuitBreaker.Enabled,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		},
		TopK:            cfg.Retrieval.TopK,
		SelectorTimeout: time.Duration(cfg.Retrieval.SelectorTimeout) * time.Second,
		Telemetry:       recorder,
	}

	client := quyche.New(clientConfig, logger)
	if cfg.LLM.APIKey == "" {
		logger.Info("no model API key configured, tree reasoning disabled")
	}
	return client, nil
}

// loadConfig loads config and applies shared validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	return cfg, nil
}
