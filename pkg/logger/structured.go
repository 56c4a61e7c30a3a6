package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// zlog is a no-op until InitStructured runs, so library consumers and
// tests never need logger setup
var zlog = zerolog.Nop()

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	var w io.Writer

	if env == "development" || env == "dev" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "questline-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithForumID returns a logger with forum_id field
func WithForumID(forumID int64) zerolog.Logger {
	return zlog.With().Int64("forum_id", forumID).Logger()
}

// WithComponent returns a logger with component field
func WithComponent(component string) zerolog.Logger {
	return zlog.With().Str("component", component).Logger()
}
