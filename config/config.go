package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"bitcoinvietnam-go/bitcoinvietnam"
	"bitcoinvietnam-go/logger"
)

// Config is read from an optional YAML file, then overridden by
// environment variables (a .env file in the working directory is loaded
// first when present).
type Config struct {
	APIKey        string        `yaml:"api_key" env:"API_KEY"`
	URL           string        `yaml:"url" env:"URL"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	StrictFilters bool          `yaml:"strict_filters" env:"STRICT_FILTERS"`
	SandboxAddr   string        `yaml:"sandbox_addr" env:"SANDBOX_ADDR"`
	Log           LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	File       string `yaml:"file" env:"FILE"`
	MaxSize    int    `yaml:"max_size" env:"MAX_SIZE"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"MAX_AGE"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

const envPrefix = "BCV_"

func defaults() *Config {
	return &Config{
		URL:         bitcoinvietnam.DefaultURL,
		SandboxAddr: "localhost:8888",
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load reads configuration. path may be empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	return cfg, nil
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		OutputFile: c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}

func (c *Config) Client() bitcoinvietnam.Config {
	return bitcoinvietnam.Config{
		URL:           c.URL,
		APIKey:        c.APIKey,
		Timeout:       c.Timeout,
		StrictFilters: c.StrictFilters,
	}
}
