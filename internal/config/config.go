package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration, read from ZHOUYI_* variables.
type Config struct {
	DBPath string `env:"ZHOUYI_DB"`
	Addr   string `env:"ZHOUYI_ADDR" envDefault:":8080"`

	Provider        string        `env:"ZHOUYI_PROVIDER" envDefault:"anthropic"`
	APIKey          string        `env:"ZHOUYI_API_KEY"`
	Model           string        `env:"ZHOUYI_MODEL"`
	ProviderURL     string        `env:"ZHOUYI_PROVIDER_URL"`
	ProviderTimeout time.Duration `env:"ZHOUYI_PROVIDER_TIMEOUT" envDefault:"60s"`

	Language      string `env:"ZHOUYI_LANG" envDefault:"en"`
	SummaryLength int    `env:"ZHOUYI_SUMMARY_LENGTH" envDefault:"100"`

	Redis RedisConfig

	LogLevel string `env:"ZHOUYI_LOG_LEVEL" envDefault:"info"`
}

// RedisConfig selects the redis session store. An empty Addr keeps
// sessions in memory.
type RedisConfig struct {
	Addr     string        `env:"ZHOUYI_REDIS_ADDR"`
	Password string        `env:"ZHOUYI_REDIS_PASSWORD"`
	DB       int           `env:"ZHOUYI_REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"ZHOUYI_SESSION_TTL" envDefault:"24h"`
}

// providerKeyVars are the vendor-specific key variables consulted when
// ZHOUYI_API_KEY is unset.
var providerKeyVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"grok":      "XAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		if name, ok := providerKeyVars[cfg.Provider]; ok {
			cfg.APIKey = os.Getenv(name)
		}
	}
	if cfg.SummaryLength <= 0 {
		return Config{}, fmt.Errorf("ZHOUYI_SUMMARY_LENGTH must be positive, got %d", cfg.SummaryLength)
	}
	return cfg, nil
}

// KeyFor returns the API key for provider. The configured provider uses
// APIKey; any other falls back to its vendor variable.
func (c Config) KeyFor(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == c.Provider {
		return c.APIKey
	}
	if name, ok := providerKeyVars[provider]; ok {
		return os.Getenv(name)
	}
	return ""
}
