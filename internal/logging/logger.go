package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10 // megabytes before rotation
	maxBack = 5
	maxAge  = 30 // days
)

// New builds the service logger: console output (stdout when console is nil),
// plus a rotated file when filePath is set.
func New(level, filePath, serviceName string, console io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
	}
	if filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    maxSize,
			MaxBackups: maxBack,
			MaxAge:     maxAge,
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(lvl)

	logger.Debug().
		Str("logFile", filePath).
		Str("level", lvl.String()).
		Msg("logger initialized")

	return logger, nil
}
