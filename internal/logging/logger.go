package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LoggerSetupParams struct {
	LogLevel      string
	LogFormatJSON bool
	Output        io.Writer
}

// Setup configures the standard logrus logger used by the commands and
// returns it so callers can hand it to converter options.
func Setup(params LoggerSetupParams) *logrus.Logger {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.Output == nil {
		logrus.SetOutput(os.Stderr)
	} else {
		logrus.SetOutput(params.Output)
	}
	return logrus.StandardLogger()
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// OrDiscard returns l, or a logger that writes nowhere when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	return discard
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()
