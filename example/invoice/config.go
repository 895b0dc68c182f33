package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type ProviderConfig struct {
	APIKey  string `split_words:"true"`
	BaseURL string `split_words:"true"`
	Model   string `split_words:"true"`
}

// Config is read from FORMFILLER_* environment variables, optionally from a .env file.
type Config struct {
	Provider string `default:"openai"`
	OpenAI   ProviderConfig
	Gemini   ProviderConfig

	// RedisURL enables redis persistence of forms and history, e.g. redis://localhost:6379/0.
	RedisURL     string        `split_words:"true"`
	SessionTTL   time.Duration `split_words:"true" default:"30m"`
	HistoryTurns int           `split_words:"true" default:"20"`

	Lang     string `default:"Chinese"`
	UseTools bool   `split_words:"true" default:"true"`
	Debug    bool
}

func loadConfig(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Could not load env file", "path", envFile, "err", err)
	}
	var conf Config
	if err := envconfig.Process("FORMFILLER", &conf); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	switch conf.Provider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("unknown provider %q", conf.Provider)
	}
	return &conf, nil
}
