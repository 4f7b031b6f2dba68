// Package logging wraps log/slog with the conventions used across
// GenVis Core: every entry carries the service name and version, and
// long-lived subsystems tag their entries with a component field via
// Logger.Component.
//
// Output is configured in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json for production, text for development
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//
//	reg := logger.Component("registry")
//	reg.Debug("cache invalidated", "feature", "ExposureTime")
//
// Never log secrets, tokens or passwords; truncate identifiers that
// could double as credentials.
package logging
