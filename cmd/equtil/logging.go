package main

import (
	"io"
	"os"
	"time"

	"github.com/goodtune/equtil/internal/config"
	"github.com/rs/zerolog"
)

// setupLogger configures the logger based on configuration. Logs go to
// stderr; stdout carries results.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
