package bwlog

import (
	"io"
	"log"
	"os"
	"reflect"
	"time"

	"github.com/rs/zerolog"
)

var Zero = NewZeroLogger("", "info", false)

var logFile *os.File

// NewZeroLogger builds the pipeline logger. Output goes to stdout when
// filepath is empty, JSON-encoded unless pretty is set.
func NewZeroLogger(filepath string, level string, pretty bool) *zerolog.Logger {
	_, writer := newWriter(filepath)
	if pretty {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(level))
	return &logger
}

func UpdateZeroLogLevel(logLevel string) error {
	zeroLogger := Zero.With().Logger().Level(parseLevel(logLevel))
	Zero = &zeroLogger
	return nil
}

// ReloadLogger swaps the global logger, closing the previously opened log file.
func ReloadLogger(filepath string, level string, pretty bool) {
	oldFile := logFile
	f, _ := newWriter(filepath)
	logFile = f
	Zero = NewZeroLogger(filepath, level, pretty)
	if oldFile != nil && oldFile != f {
		_ = oldFile.Close()
	}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "disabled":
		return zerolog.Disabled
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetPointer returns the memory address of the given value as an unsigned integer.
func GetPointer(value any) uint {
	return uint(reflect.ValueOf(value).Pointer())
}

func newWriter(filepath string) (*os.File, io.Writer) {
	if filepath == "" {
		return nil, os.Stdout
	}
	if logFile != nil && logFile.Name() == filepath {
		return logFile, logFile
	}
	f, err := os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}
	return f, f
}
