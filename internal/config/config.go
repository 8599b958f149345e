// Package config loads runtime settings.
//
// Precedence, lowest first: built-in defaults, the YAML file, a .env file,
// then the process environment. Values from .env never override variables
// that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/petasbytes/form-agent/internal/provider"
)

type Config struct {
	Provider        string `yaml:"provider"`
	AnthropicModel  string `yaml:"anthropic_model"`
	AnthropicAPIKey string `yaml:"-"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	Addr       string `yaml:"addr"`
	DataDir    string `yaml:"data_dir"`
	SessionTTL string `yaml:"session_ttl"`
	LogLevel   string `yaml:"log_level"`

	MaxSteps  int   `yaml:"max_steps"`
	MaxTokens int64 `yaml:"max_tokens"`

	ObserveJSON bool   `yaml:"observe_json"`
	EventsPath  string `yaml:"events_path"`
}

func Default() Config {
	return Config{
		Provider:   "anthropic",
		Addr:       ":3001",
		DataDir:    ".agent/sessions",
		SessionTTL: "24h",
		LogLevel:   "info",
		MaxSteps:   8,
		MaxTokens:  1024,
		EventsPath: ".agent/events.jsonl",
	}
}

// Load resolves the configuration. configPath may be empty (AGT_CONFIG is
// consulted then); a named file that does not exist is an error. envFile may
// be empty or missing.
func Load(configPath, envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if configPath == "" {
		configPath = os.Getenv("AGT_CONFIG")
	}
	if configPath != "" {
		b, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	str(&c.Provider, "AGT_PROVIDER", "PROVIDER")
	str(&c.AnthropicModel, "AGT_ANTHROPIC_MODEL")
	str(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	str(&c.OpenAIBaseURL, "AGT_OPENAI_BASE_URL", "OLLAMA_BASE_URL")
	str(&c.OpenAIModel, "AGT_OPENAI_MODEL", "OLLAMA_MODEL")
	str(&c.OpenAIAPIKey, "AGT_OPENAI_API_KEY", "OPENAI_API_KEY")
	str(&c.Addr, "AGT_ADDR")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("AGT_ADDR") == "" {
		c.Addr = ":" + port
	}
	str(&c.DataDir, "AGT_DATA_DIR")
	str(&c.SessionTTL, "AGT_SESSION_TTL")
	str(&c.LogLevel, "AGT_LOG_LEVEL", "LOG_LEVEL")
	str(&c.EventsPath, "AGT_EVENTS_PATH")

	if v := os.Getenv("AGT_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_STEPS %q: %w", v, err)
		}
		c.MaxSteps = n
	}
	if v := os.Getenv("AGT_MAX_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_TOKENS %q: %w", v, err)
		}
		c.MaxTokens = n
	}
	if v, ok := os.LookupEnv("AGT_OBSERVE_JSON"); ok {
		c.ObserveJSON = v == "1"
	}
	return nil
}

// Validate rejects values the rest of the program cannot run with.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "ollama", "openai":
	default:
		return fmt.Errorf("unknown provider %q (want anthropic, ollama or openai)", c.Provider)
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// TTL parses SessionTTL. "0" disables expiry.
func (c Config) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session_ttl %q: %w", c.SessionTTL, err)
	}
	return d, nil
}

// ModelConfig selects the backend described by c.
func (c Config) ModelConfig() provider.Config {
	return provider.Config{
		Provider:        c.Provider,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
		OpenAIBaseURL:   c.OpenAIBaseURL,
		OpenAIModel:     c.OpenAIModel,
		OpenAIAPIKey:    c.OpenAIAPIKey,
		MaxTokens:       c.MaxTokens,
	}
}
