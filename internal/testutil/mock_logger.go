// Package testutil collects small fakes shared by the normalization
// service's package tests, so individual test files don't each hand-roll
// their own stand-in for logging.Logger.
package testutil

import (
	"fmt"
	"sync"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

// LogMessage is one call captured by MockLogger.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// MockLogger records every call instead of emitting it, so a test can
// assert on what was logged. Safe for concurrent use.
type MockLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	name     string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.name != "" {
		msg = fmt.Sprintf("[%s] %s", m.name, msg)
	}
	m.messages = append(m.messages, LogMessage{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.record("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.record("fatal", msg, fields) }

// With ignores its fields and returns the same recorder; MockLogger is
// meant for asserting which messages were emitted, not which preset
// fields were attached at each call site.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return m
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := &MockLogger{name: name}
	if m.name != "" {
		child.name = m.name + "." + name
	}
	return child
}

// GetMessages returns a snapshot of everything recorded so far.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Clear discards all recorded messages.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// HasMessage reports whether a message at level with exactly msg as its
// text was recorded.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.messages {
		if rec.Level == level && rec.Message == msg {
			return true
		}
	}
	return false
}

// NopLogger discards everything; use it where a test needs a Logger but
// never inspects what was logged.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...logging.Field) {}
func (*NopLogger) Info(string, ...logging.Field)  {}
func (*NopLogger) Warn(string, ...logging.Field)  {}
func (*NopLogger) Error(string, ...logging.Field) {}
func (*NopLogger) Fatal(string, ...logging.Field) {}
func (n *NopLogger) With(...logging.Field) logging.Logger { return n }
func (n *NopLogger) Named(string) logging.Logger          { return n }
