// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON structured logger used by the service.
func NewLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}

// Init installs the service logger as the slog default and returns it.
func Init() *slog.Logger {
	l := NewLogger()
	slog.SetDefault(l)
	return l
}
