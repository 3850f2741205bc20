package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	o sync.Once
	l zerolog.Logger
)

// GetLogger returns the process-wide logger, building it on first use from
// LOG_LEVEL, LOG_FILE and GO_ENV. Binaries tag themselves with
// With().Str("service", ...).
func GetLogger() zerolog.Logger {
	o.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		logLevel := parseLevel(os.Getenv("LOG_LEVEL"))

		// pretty-print console writer to stdout for GO_ENV=dev
		var output io.Writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}

		if os.Getenv("GO_ENV") != "dev" {
			lf := os.Getenv("LOG_FILE")

			if lf == "" {
				output = os.Stderr
			} else {
				fileLogger := &lumberjack.Logger{
					Filename:   lf,
					MaxSize:    20,
					MaxBackups: 10,
					MaxAge:     14,
					Compress:   true,
				}
				output = zerolog.MultiLevelWriter(os.Stderr, fileLogger)
			}
		}

		l = zerolog.New(output).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Logger()
	})

	return l
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
