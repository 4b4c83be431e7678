package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"todolist/internal/config"
)

// New builds the process logger from the log section of the config. Output is
// JSON unless format is "text". An unknown level falls back to info.
func New(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(out)

	if strings.EqualFold(cfg.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	l.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level)); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Discard is a logger for tests and quiet commands.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithRequestID scopes a logger to one HTTP request.
func WithRequestID(l logrus.FieldLogger, requestID string) logrus.FieldLogger {
	if requestID == "" {
		return l
	}
	return l.WithField("request_id", requestID)
}
