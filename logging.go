package texcache

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package logger. The cache is a library, so it stays quiet by
// default; set TEXCACHE_LOG_LEVEL (trace/debug/info/...) to see surface
// lifecycle and transfer activity.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(os.Getenv("TEXCACHE_LOG_LEVEL"))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	l.SetLevel(lvl)
	return l
}

// SetLogger replaces the package logger, for embedders which already carry
// their own logrus instance.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}
