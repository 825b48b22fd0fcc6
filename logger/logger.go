package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger instance used by all packages.
var Log *logrus.Logger

// Init configures the global logger. Output format can be switched to JSON
// via the LOG_FORMAT environment variable for log aggregation setups.
func Init() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)

	if os.Getenv("LOG_FORMAT") == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
