package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no bot credential is configured
var ErrMissingToken = errors.New("TG_API is not set: add it to the environment or your .env file")

const sqlitePrefix = "sqlite:///"

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// TelegramConfig holds the bot credential and polling settings
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	Workers     int    `mapstructure:"workers"`
	PollTimeout int    `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds the database location
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// SessionConfig selects where conversation sessions live
type SessionConfig struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig holds the health server address; empty disables it
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

var envBindings = map[string]string{
	"telegram.token":        "TG_API",
	"telegram.workers":      "TG_WORKERS",
	"telegram.poll_timeout": "TG_POLL_TIMEOUT",
	"database.url":          "DATABASE_URL",
	"session.backend":       "SESSION_BACKEND",
	"session.path":          "SESSION_PATH",
	"session.ttl":           "SESSION_TTL",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
	"http.addr":             "HTTP_ADDR",
}

// Load reads .env (if present), an optional netbook.yaml and the environment
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("netbook")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("telegram.workers", 4)
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("database.url", sqlitePrefix+"db.sqlite")
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.path", "sessions")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("http.addr", "")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.Session.Backend {
	case "memory", "badger":
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	return &cfg, nil
}

// RequireToken fails when the bot credential is absent
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// DatabasePath turns the database URL into a file path
func (c *Config) DatabasePath() string {
	return strings.TrimPrefix(c.Database.URL, sqlitePrefix)
}

// Logger builds the process logger writing to w
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
