package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger at the given level; unknown levels fall back to
// info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if level != "" {
		if parsed, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
			logger.SetLevel(parsed)
		}
	}

	return logger
}
