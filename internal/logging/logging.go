// Package logging builds the service logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to stdout at level. An unknown level
// falls back to info with a warning.
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput is New writing to w.
func NewWithOutput(level string, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(w)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
