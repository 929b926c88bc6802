package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger represents a simple leveled logger interface
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a new logger with the specified level
func NewLogger(level string) Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	zl := zerolog.New(os.Stdout).Level(l).With().Timestamp().Logger()

	return &zerologLogger{zl: zl}
}

// NewNopLogger creates a logger that discards everything, for tests
func NewNopLogger() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

func (l *zerologLogger) Debug(msg string, keyvals ...interface{}) {
	appendFields(l.zl.Debug(), keyvals...).Msg(msg)
}

func (l *zerologLogger) Info(msg string, keyvals ...interface{}) {
	appendFields(l.zl.Info(), keyvals...).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, keyvals ...interface{}) {
	appendFields(l.zl.Warn(), keyvals...).Msg(msg)
}

func (l *zerologLogger) Error(msg string, keyvals ...interface{}) {
	appendFields(l.zl.Error(), keyvals...).Msg(msg)
}

func appendFields(ev *zerolog.Event, keyvals ...interface{}) *zerolog.Event {
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}

		if i+1 < len(keyvals) {
			ev = ev.Interface(key, keyvals[i+1])
		} else {
			ev = ev.Str(key, "missing")
		}
	}

	return ev
}
