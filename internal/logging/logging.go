package logging

import (
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. DEV gets human readable console
// output, other environments get JSON on stderr. Unknown levels fall back to info.
func Setup(env, level string) zerolog.Logger {
	return SetupWriter(env, level, nil)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(env, level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logger zerolog.Logger
	if env == "DEV" {
		if out == nil {
			out = os.Stdout
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	} else {
		if out == nil {
			out = os.Stderr
		}
		logger = zerolog.New(out).With().Timestamp().Logger()
	}

	log.Logger = logger
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)
	return logger
}
