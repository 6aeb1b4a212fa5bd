package logger

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It writes to stderr at info level until
// Init is called.
var Logger = logrus.New()

// Init configures the process-wide logger. It is called once from main before
// anything else logs.
func Init(level string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	Logger.SetFormatter(&CustomFormatter{})
	Logger.SetLevel(lvl)
	Logger.SetOutput(out)
	return nil
}

// Redirect sends log output to w until the returned function is called,
// which restores the previous output. The terminal viewer owns the screen
// while it runs, so it captures the log into one of its panes.
func Redirect(w io.Writer) (restore func()) {
	prev := Logger.Out
	Logger.SetOutput(w)
	return func() {
		Logger.SetOutput(prev)
	}
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
