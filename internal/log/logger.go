package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the console logger. Outside production the level defaults to
// debug; level, when non-empty, wins over the environment default.
func New(environment, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	zerolog.SetGlobalLevel(resolveLevel(environment, level))

	return logger
}

func resolveLevel(environment, level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	if environment != "production" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
