package logconfig

import (
	"strings"

	myLogger "github.com/sirupsen/logrus"
)

// Terminal output with caller info, used in tests and local runs.
func ConfigDebugLogger() {
	myLogger.SetReportCaller(true)
	myLogger.SetLevel(myLogger.DebugLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

func ConfigInfoLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// This output format is used in production (wallet server).
func ConfigProductionLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.JSONFormatter{})
}

// ConfigLogger picks one of the presets above by name.
// Unknown names fall back to the info preset.
func ConfigLogger(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		ConfigDebugLogger()
	case "production", "prod", "json":
		ConfigProductionLogger()
	default:
		ConfigInfoLogger()
	}
}
