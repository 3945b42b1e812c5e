package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage is one captured log entry.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger is a Logger that captures messages for assertions in
// tests. WithField/WithFields/WithError return derived loggers that
// record into the same capture buffer.
type TestLogger struct {
	core   *testCapture
	fields map[string]interface{}
}

type testCapture struct {
	mu       sync.Mutex
	messages []LogMessage
	nop      zerolog.Logger
}

// NewTestLogger creates a capturing logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		core:   &testCapture{nop: zerolog.Nop()},
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) log(level, msg string, extra map[string]interface{}) {
	fields := make(map[string]interface{}, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}

	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.messages = append(l.core.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	derived := &TestLogger{
		core:   l.core,
		fields: make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		derived.fields[k] = v
	}
	for k, v := range fields {
		derived.fields[k] = v
	}
	return derived
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return &l.core.nop
}

// Messages returns a copy of everything captured so far.
func (l *TestLogger) Messages() []LogMessage {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	out := make([]LogMessage, len(l.core.messages))
	copy(out, l.core.messages)
	return out
}

// MessagesByLevel returns captured messages of one level.
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.Messages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage reports whether a message with the given text was logged.
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.Messages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// Clear discards everything captured so far.
func (l *TestLogger) Clear() {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.messages = l.core.messages[:0]
}
