// Package xlog centralizes zerolog setup for the backtest core, the way
// the teacher bot centralized its Prometheus registrations in metrics.go.
package xlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// L returns the process-wide logger, console-formatted for local runs.
func L() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	})
	return logger
}

// SetLevel adjusts the global log level (debug, info, warn, error).
func SetLevel(level string) {
	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		lv = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lv)
}
