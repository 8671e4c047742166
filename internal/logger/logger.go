package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. The level can be overridden
// with LOG_LEVEL (debug, info, warn, error); anything else falls back to info.
func Init() {
	// ConsoleWriter gives human-readable, colorized output in development.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Include the caller's file and line number in every entry.
	log.Logger = log.With().Caller().Logger()
}
