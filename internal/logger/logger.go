package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер. format: "json" или "text".
func Init(level, format string) *logrus.Logger {
	Log = New(level, format)
	return Log
}

// New создаёт отдельный логгер, не трогая глобальный.
func New(level, format string) *logrus.Logger {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// Component возвращает запись с полем component.
func Component(name string) *logrus.Entry {
	if Log == nil {
		Log = Discard()
	}
	return Log.WithField("component", name)
}

// Discard возвращает логгер без вывода (для тестов).
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
