package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base *logrus.Logger
	once sync.Once
)

// root returns the process-wide logrus logger, creating it on first use
func root() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// SetLevel sets the global log level from a config string ("debug", "info", ...).
// Unknown values fall back to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	root().SetLevel(parsed)
}

// New returns a logger entry scoped to a component name
func New(component string) *logrus.Entry {
	return root().WithField("component", component)
}
