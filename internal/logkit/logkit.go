// Package logkit wraps logrus with the handful of leveled helpers midas
// needs throughout the rest of the application.
package logkit

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultFilter is applied when RUST_LOG is unset.
const DefaultFilter = "midas=info"

// ConfigureFromFilter sets the package-wide logrus level from a filter
// string shaped like "midas=info" or a bare level such as "debug". Unknown
// levels fall back to info rather than erroring, since a malformed filter
// should not prevent the tool from running.
func ConfigureFromFilter(filter string) {
	if filter == "" {
		filter = DefaultFilter
	}

	level := filter
	if idx := strings.LastIndex(filter, "="); idx >= 0 {
		level = filter[idx+1:]
	}

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func Tracef(format string, args ...any) { logrus.Tracef(format, args...) }
func Debugf(format string, args ...any) { logrus.Debugf(format, args...) }
func Infof(format string, args ...any)  { logrus.Infof(format, args...) }
func Warnf(format string, args ...any)  { logrus.Warnf(format, args...) }
func Errorf(format string, args ...any) { logrus.Errorf(format, args...) }
