package poolcore

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the package-wide logrus level from the
// POOLCORE_LOG_LEVEL environment variable (panic|fatal|error|warn|info|debug|trace),
// defaulting to info, and switches to JSON output when POOLCORE_LOG_FORMAT=json.
func ConfigureLogging() {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("POOLCORE_LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.ToLower(os.Getenv("POOLCORE_LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
