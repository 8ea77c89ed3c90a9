package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
)

// New constructs a zerolog logger from the service configuration.
func New(cfg *config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "console":
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		log = zerolog.New(consoleWriter).With().Timestamp().Logger()
	default:
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(lvl)
	return log.Level(lvl).With().Str("service", cfg.ServiceName).Logger()
}
