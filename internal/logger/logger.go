package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger configures the process-wide logger. JSON output is used outside
// development or when LOG_FORMAT=json.
func InitLogger(logLevel, logFormat string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		if isDevelopment {
			logLevel = "debug"
		} else {
			logLevel = "info"
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.EqualFold(logFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stdout)
	Logger = log
	return log
}

// GetLogger returns the global logger, creating a default one if needed.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", "", false)
	}
	return Logger
}

// WithComponent tags entries with the subsystem that wrote them.
func WithComponent(name string) *logrus.Entry {
	return GetLogger().WithField("component", name)
}

// WithSession tags entries with a bag session.
func WithSession(sessionID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component":  "session",
		"session_id": sessionID,
	})
}

// WithCalibrationRun tags entries with a calibration run.
func WithCalibrationRun(runID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": "calibrate",
		"run_id":    runID,
	})
}
