// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and can be tagged with the run identifier of
// a single scheduler job execution so every line from one reconciliation
// pass can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error (debug selects zap's development
//     config, any other level the production config)
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("scheduler started")
//
//	// For a single job run:
//	l := logger.WithRunID(log, runID)
//	l.Error("reconciliation failed", zap.Error(err))
package logger
