package mmgrid

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetLogger replaces the package logger. Call it before generating.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the package logger.
func Logger() *logrus.Logger { return logger }

func DebugLog(format string, args ...interface{}) {
	if Debug {
		logger.Debugf(format, args...)
	}
}

var once sync.Once

func DebugLogOnce(format string, args ...interface{}) {
	if !Debug {
		return
	}
	once.Do(func() {
		logger.Debugf(format, args...)
	})
}
