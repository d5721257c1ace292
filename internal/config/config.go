package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port        string
	Environment string

	Storage           string
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool

	LogLevel  string
	LogFormat string

	CORSOrigins  []string
	MaxBodyBytes int64

	// Cascade retry policy for dependent cleanup on folder/tag delete.
	CascadeRetries    int
	CascadeRetryDelay time.Duration
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"ENVIRONMENT":          "dev",
	"STORAGE":              StorageMongo,
	"MONGODB_URI":          "mongodb://localhost:27017",
	"MONGODB_DATABASE":     "noteful",
	"MONGODB_TRANSACTIONS": false,
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "text",
	"CORS_ORIGINS":         "*",
	"MAX_BODY_BYTES":       1 << 20,
	"CASCADE_RETRIES":      3,
	"CASCADE_RETRY_DELAY":  "100ms",
}

// Load reads configuration from the environment, optionally layered over
// a YAML file named by NOTEFUL_CONFIG. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("NOTEFUL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		Environment:       v.GetString("ENVIRONMENT"),
		Storage:           strings.ToLower(v.GetString("STORAGE")),
		MongoURI:          v.GetString("MONGODB_URI"),
		MongoDatabase:     v.GetString("MONGODB_DATABASE"),
		MongoTransactions: v.GetBool("MONGODB_TRANSACTIONS"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		MaxBodyBytes:      v.GetInt64("MAX_BODY_BYTES"),
		CascadeRetries:    v.GetInt("CASCADE_RETRIES"),
		CascadeRetryDelay: v.GetDuration("CASCADE_RETRY_DELAY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Storage, validation.In(StorageMongo, StorageMemory)),
		validation.Field(&c.MongoURI, validation.When(c.Storage == StorageMongo, validation.Required)),
		validation.Field(&c.MongoDatabase, validation.When(c.Storage == StorageMongo, validation.Required)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.CascadeRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.CascadeRetryDelay, validation.Min(time.Duration(0))),
	)
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
