// Package logging builds the process-wide structured logger.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mlaska/coldpack/internal/config"
)

// New builds a logger from config. An unknown level falls back to info
// instead of failing the run.
func New(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
