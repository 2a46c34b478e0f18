// Package log is a thin wrapper around logrus, mirroring open-policy-
// agent/opa's logging surface: a package default logger plus
// WithField/WithFields call sites at component boundaries, rather than ad
// hoc fmt.Printf debugging.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields so callers never need to import logrus
// directly.
type Fields = logrus.Fields

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses and applies a level name ("debug", "info", "warn",
// "error") to the package logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	return nil
}

// SetOutput redirects the package logger, primarily for tests that want to
// silence or capture log output.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// WithField returns an entry scoped to a single key/value pair.
func WithField(key string, value interface{}) *logrus.Entry {
	return std.WithField(key, value)
}

// WithFields returns an entry scoped to the given fields.
func WithFields(fields Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Debugf(format string, args ...interface{}) { std.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { std.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { std.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { std.Errorf(format, args...) }
