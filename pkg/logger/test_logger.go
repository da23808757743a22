package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log messages so tests can assert on them
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{zerolog: &nop}
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
	return &fieldLogger{root: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &fieldLogger{root: l, fields: copyFields(fields)}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: msg, Fields: fields})
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

// HasMessage reports whether any message contains text
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if strings.Contains(msg.Message, text) {
			return true
		}
	}
	return false
}

// HasError reports whether anything was logged at ERROR
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear drops all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// fieldLogger is a TestLogger view with bound fields
type fieldLogger struct {
	root   *TestLogger
	fields map[string]interface{}
}

func (f *fieldLogger) Debug(msg string) { f.root.log("DEBUG", msg, f.fields) }
func (f *fieldLogger) Info(msg string)  { f.root.log("INFO", msg, f.fields) }
func (f *fieldLogger) Warn(msg string)  { f.root.log("WARN", msg, f.fields) }
func (f *fieldLogger) Error(msg string) { f.root.log("ERROR", msg, f.fields) }

func (f *fieldLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	f.root.log("DEBUG", msg, f.merge(fields))
}
func (f *fieldLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	f.root.log("INFO", msg, f.merge(fields))
}
func (f *fieldLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	f.root.log("WARN", msg, f.merge(fields))
}
func (f *fieldLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	f.root.log("ERROR", msg, f.merge(fields))
}

func (f *fieldLogger) WithField(key string, value interface{}) Logger {
	return &fieldLogger{root: f.root, fields: f.merge(map[string]interface{}{key: value})}
}

func (f *fieldLogger) WithFields(fields map[string]interface{}) Logger {
	return &fieldLogger{root: f.root, fields: f.merge(fields)}
}

func (f *fieldLogger) WithError(err error) Logger {
	if err == nil {
		return f
	}
	return f.WithField("error", err.Error())
}

func (f *fieldLogger) GetZerolog() *zerolog.Logger {
	return f.root.zerolog
}

func (f *fieldLogger) merge(additional map[string]interface{}) map[string]interface{} {
	merged := copyFields(f.fields)
	for k, v := range additional {
		merged[k] = v
	}
	return merged
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
