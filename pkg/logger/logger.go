package logger

import (
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// New builds the process logger: slog API over a zerolog backend, with a
// console writer and debug level in development.
func New(env string) *slog.Logger {
	level := slog.LevelInfo

	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if env == "development" {
		zl = zl.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		level = slog.LevelDebug
	}

	return slog.New(slogzerolog.Option{
		Level:  level,
		Logger: &zl,
	}.NewZerologHandler())
}
