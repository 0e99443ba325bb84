// Package logger provides a structured logging interface for the fetch client.
//
// It wraps the zerolog library behind a small interface so library code can
// log without committing callers to a concrete backend. Features:
// - Multiple log levels (Debug, Info, Warn, Error)
// - Structured logging with fields
// - Console output, optional file output
// - Global logger instance for easy access
// - A capturing TestLogger for assertions on emitted messages
//
// Basic Usage:
//
//	import "github.com/adobe/fetch-retry-go/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	logger.GetLogger().WarnWithFields("retrying request", map[string]interface{}{
//	    "attempt": 2,
//	    "delay":   time.Second,
//	})
package logger
