package logging

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared application logger.
var Log = logrus.New()

// Setup configures the shared logger. Debug enables debug-level output.
func Setup(debug bool) {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if debug {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

// WithInstance returns a logger entry tagged with an instance id.
func WithInstance(id string) *logrus.Entry {
	return Log.WithField("instance", id)
}

// WithGame returns a logger entry tagged with a game id.
func WithGame(id string) *logrus.Entry {
	return Log.WithField("game", id)
}
