package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes leveled, structured log lines. Arguments after the message
// are alternating key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a console Logger at info level writing to stdout.
func NewLogger() *Logger {
	return New(os.Stdout, "info", "console")
}

// New creates a Logger writing to out. format is "console" or "json".
func New(out io.Writer, level, format string) *Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	emit(l.zl.Info(), msg, args)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) {
	emit(l.zl.Warn(), msg, args)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	emit(l.zl.Error(), msg, args)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	emit(l.zl.Debug(), msg, args)
}

func emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = "arg"
		}
		if i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		if err, isErr := args[i+1].(error); isErr {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
