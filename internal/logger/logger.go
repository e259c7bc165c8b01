package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// New configures a logrus logger for the given environment. An explicit level
// or format overrides the environment default.
func New(env, level, format string) *logrus.Logger {
	return newWithOutput(os.Stdout, env, level, format)
}

func newWithOutput(out io.Writer, env, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	switch env {
	case envLocal:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
		log.SetLevel(logrus.DebugLevel)
	case envDev:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		log.SetLevel(logrus.InfoLevel)
	case envProd:
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		log.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			log.SetLevel(lvl)
		} else {
			log.WithField("level", level).Warn("unknown log level, keeping default")
		}
	}

	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
