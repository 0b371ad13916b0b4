package netmux

import "github.com/sirupsen/logrus"

// defaultLogger returns the logrus.Logger used when WithLogger is not
// given: InfoLevel, text formatter, writing to stderr.
func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}
