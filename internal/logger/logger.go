package logger

import (
	"io"

	"github.com/sirupsen/logrus"

	"mapper-engine/internal/common"
	"mapper-engine/internal/config"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// New creates a new structured logger instance
func New(cfg config.LoggingConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: log}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return &Logger{Logger: log}
}

// WithSession adds session context to log entries
func (l *Logger) WithSession(id string) *logrus.Entry {
	return l.WithField("session_id", id)
}

// WithSide adds mapper side context to log entries
func (l *Logger) WithSide(side common.Side) *logrus.Entry {
	return l.WithField("side", side.String())
}

// WithProvider adds provider kind context to log entries
func (l *Logger) WithProvider(kind string) *logrus.Entry {
	return l.WithField("provider", kind)
}
