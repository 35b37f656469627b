package config

import (
	"fmt"
	"os"
)

// Config is the process configuration, read once at startup from the
// environment.
type Config struct {
	Port string

	// StorageBackend selects the repository implementations:
	// "memory" (default), "postgres" or "sqlite".
	StorageBackend string
	DatabaseURL    string
	SQLiteDSN      string

	// RedisAddr, when set, switches rate-limit stats to the shared redis
	// store so counters survive restarts and span instances.
	RedisAddr string

	SallingBaseURL string
	SallingAPIKey  string

	OpenAIBaseURL string
	OpenAIAPIKey  string
}

func Load() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		StorageBackend: getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLiteDSN:      getenv("SQLITE_DSN", "clearance.db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		SallingBaseURL: getenv("SALLING_BASE_URL", "https://api.sallinggroup.com"),
		SallingAPIKey:  os.Getenv("SALLING_API_KEY"),
		OpenAIBaseURL:  getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
	}

	switch cfg.StorageBackend {
	case "memory", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.SallingAPIKey == "" {
		return Config{}, fmt.Errorf("SALLING_API_KEY is required")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
