// Package logging wraps logrus behind the small structured-field API the rest
// of the engine is written against, so call sites read WithField/WithFields
// chains the way a service's own logging facade would, backed by logrus
// instead of a bespoke reimplementation of it.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin façade over *logrus.Entry.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger at the given level ("debug"|"info"|"warn"|"error"|"fatal") and
// format ("json"|"text").
func New(level, format string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{entry: logrus.NewEntry(base)}
}

// WithField returns a derived Logger carrying one additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a derived Logger carrying several additional structured fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }
func (l *Logger) Fatal(msg string) { l.entry.Fatal(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
