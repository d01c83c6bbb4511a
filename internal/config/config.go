package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8002"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"text"`
	ProfilePath    string   `env:"ARBITER_PROFILE_PATH"`
	GapWeight      float64  `env:"ARBITER_EVIDENCE_GAP_WEIGHT" envDefault:"0.5"`

	Store     StoreConfig
	Narrative NarrativeConfig
	Ollama    OllamaConfig
	OpenAI    OpenAIConfig
}

// StoreConfig controls verdict history persistence.
type StoreConfig struct {
	Path    string `env:"ARBITER_DB_PATH" envDefault:"data/arbiter.db"`
	Disable bool   `env:"ARBITER_DISABLE_STORE"`
	Silent  bool   `env:"ARBITER_DB_SILENT" envDefault:"true"`
}

// NarrativeConfig bounds the best-effort narrative call.
type NarrativeConfig struct {
	Disable     bool          `env:"DISABLE_AI"`
	Timeout     time.Duration `env:"NARRATIVE_TIMEOUT" envDefault:"60s"`
	Language    string        `env:"NARRATIVE_LANGUAGE" envDefault:"English"`
	Temperature float64       `env:"NARRATIVE_TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int           `env:"NARRATIVE_MAX_TOKENS" envDefault:"400"`
}

// OllamaConfig points at the reference text-generation deployment.
type OllamaConfig struct {
	URL   string `env:"OLLAMA_API" envDefault:"http://localhost:11434/api/generate"`
	Model string `env:"MODEL_NAME" envDefault:"qwen3:4b-instruct-2507-q4_K_M"`
}

// OpenAIConfig configures the optional OpenAI fallback.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"OPENAI_MODEL"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("config: NARRATIVE_TIMEOUT must be positive, got %s", c.Narrative.Timeout)
	}
	if c.GapWeight < 0 {
		return fmt.Errorf("config: ARBITER_EVIDENCE_GAP_WEIGHT must not be negative, got %v", c.GapWeight)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if !c.Store.Disable && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("config: ARBITER_DB_PATH must be set unless ARBITER_DISABLE_STORE is true")
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
