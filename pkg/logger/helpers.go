package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed HTTP request at a level matching its status
func LogRequest(l Logger, method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogComponentStart logs when a stage starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Info("Component started")
}

// LogComponentStop logs when a stage stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogMetrics logs performance metrics
func LogMetrics(l Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	l.InfoWithFields("Performance metrics", fields)
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
