// Package bootstrap assembles the engine, narrative backends and history store from config.
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"dispute-arbiter/internal/ai"
	"dispute-arbiter/internal/arbitration"
	"dispute-arbiter/internal/config"
	"dispute-arbiter/internal/scoring"
	"dispute-arbiter/internal/store"
)

// ConfigureLogging applies the level and formatter from cfg to the standard logger.
func ConfigureLogging(cfg config.Config) {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		logrus.WithError(err).Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if strings.EqualFold(strings.TrimSpace(cfg.LogFormat), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// Completer builds the narrative backend chain: Ollama first, OpenAI as fallback.
// It returns nil when narrative generation is disabled or nothing is configured.
func Completer(cfg config.Config) ai.Completer {
	if cfg.Narrative.Disable {
		logrus.Info("narrative advisor disabled via DISABLE_AI")
		return nil
	}

	var primary, fallback ai.Completer
	ollama, err := ai.NewOllamaClient(ai.OllamaConfig{
		URL:     cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Narrative.Timeout,
	})
	switch {
	case err == nil:
		primary = ollama
	case errors.Is(err, ai.ErrDisabled):
		logrus.Info("ollama backend not configured")
	default:
		logrus.WithError(err).Warn("ollama backend unavailable")
	}

	openai, err := ai.NewClient(ai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.Narrative.Timeout,
	})
	switch {
	case err == nil:
		fallback = openai
	case errors.Is(err, ai.ErrDisabled):
		logrus.Debug("openai fallback not configured")
	default:
		logrus.WithError(err).Warn("openai fallback unavailable")
	}

	return ai.WithFallback(primary, fallback)
}

// Engine loads the scoring profile and builds the arbitration engine.
// A nil completer yields an engine without narrative commentary.
func Engine(cfg config.Config, completer ai.Completer) (*arbitration.Engine, error) {
	profile, err := scoring.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("scoring profile: %w", err)
	}

	tuning := arbitration.DefaultTuning()
	tuning.GapWeight = cfg.GapWeight

	opts := []arbitration.Option{arbitration.WithTuning(tuning)}
	if completer != nil {
		opts = append(opts, arbitration.WithNarrator(arbitration.NewAdvisor(completer, arbitration.AdvisorConfig{
			Timeout:     cfg.Narrative.Timeout,
			Language:    cfg.Narrative.Language,
			Temperature: cfg.Narrative.Temperature,
			MaxTokens:   cfg.Narrative.MaxTokens,
		})))
	}
	return arbitration.NewEngine(scoring.NewScorer(profile), opts...), nil
}

// Store opens the verdict history database, creating its directory when needed.
// It returns nil, nil when history is disabled.
func Store(cfg config.StoreConfig) (*store.Database, error) {
	if cfg.Disable {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.Open(cfg.Path, cfg.Silent)
}
