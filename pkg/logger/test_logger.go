package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures every log call so tests can assert on them
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new capturing logger
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

func (l *TestLogger) root() *capture { return &capture{sink: l} }

func (l *TestLogger) Debug(msg string) { l.root().Debug(msg) }
func (l *TestLogger) Info(msg string)  { l.root().Info(msg) }
func (l *TestLogger) Warn(msg string)  { l.root().Warn(msg) }
func (l *TestLogger) Error(msg string) { l.root().Error(msg) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.root().DebugWithFields(msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.root().InfoWithFields(msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.root().WarnWithFields(msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.root().ErrorWithFields(msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.root().WithField(key, value)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.root().WithFields(fields)
}

func (l *TestLogger) WithError(err error) Logger { return l.root().WithError(err) }

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func (l *TestLogger) record(m LogMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
}

// GetMessages returns a copy of all captured messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if an error-level message was logged
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear drops all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// capture is a child logger carrying accumulated fields and error
type capture struct {
	sink   *TestLogger
	fields map[string]interface{}
	err    error
}

func (c *capture) log(level, msg string, extra map[string]interface{}) {
	var fields map[string]interface{}
	if len(c.fields)+len(extra) > 0 {
		fields = make(map[string]interface{}, len(c.fields)+len(extra))
		for k, v := range c.fields {
			fields[k] = v
		}
		for k, v := range extra {
			fields[k] = v
		}
	}
	c.sink.record(LogMessage{Level: level, Message: msg, Fields: fields, Error: c.err})
}

func (c *capture) Debug(msg string) { c.log("DEBUG", msg, nil) }
func (c *capture) Info(msg string)  { c.log("INFO", msg, nil) }
func (c *capture) Warn(msg string)  { c.log("WARN", msg, nil) }
func (c *capture) Error(msg string) { c.log("ERROR", msg, nil) }

func (c *capture) DebugWithFields(msg string, f map[string]interface{}) { c.log("DEBUG", msg, f) }
func (c *capture) InfoWithFields(msg string, f map[string]interface{})  { c.log("INFO", msg, f) }
func (c *capture) WarnWithFields(msg string, f map[string]interface{})  { c.log("WARN", msg, f) }
func (c *capture) ErrorWithFields(msg string, f map[string]interface{}) { c.log("ERROR", msg, f) }

func (c *capture) WithField(key string, value interface{}) Logger {
	return c.WithFields(map[string]interface{}{key: value})
}

func (c *capture) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &capture{sink: c.sink, fields: merged, err: c.err}
}

func (c *capture) WithError(err error) Logger {
	return &capture{sink: c.sink, fields: c.fields, err: err}
}

func (c *capture) WithContext(ctx context.Context) Logger { return c }

func (c *capture) GetZerolog() *zerolog.Logger { return c.sink.GetZerolog() }
