package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // console or json
	TimeFormat string
	Output     io.Writer
}

// New builds a zerolog logger from cfg. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Setup builds the logger and installs it as the global zerolog logger
func Setup(cfg Config) zerolog.Logger {
	l := New(cfg)
	zerolog.TimeFieldFormat = cfg.TimeFormat
	if zerolog.TimeFieldFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	}
	log.Logger = l
	return l
}
