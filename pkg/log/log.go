package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the process-wide logger.
type Config struct {
	Level   string    // "debug", "info", ...; falls back to LOG_LEVEL
	Output  io.Writer // defaults to os.Stdout
	Service string    // falls back to LOG_SERVICE, then "instance-doctor"
}

var (
	mu         sync.RWMutex
	base       zerolog.Logger
	configured bool
)

// Configure replaces the base logger. Binaries call it once at startup;
// packages that log before that get the defaults.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = os.Getenv("LOG_SERVICE")
	}
	if service == "" {
		service = "instance-doctor"
	}

	l := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str(FieldService, service).
		Logger()

	mu.Lock()
	base = l
	configured = true
	mu.Unlock()
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	mu.RLock()
	if configured {
		l := base
		mu.RUnlock()
		return l
	}
	mu.RUnlock()
	Configure(Config{})
	return Base()
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
