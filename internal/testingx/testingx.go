// Package testingx provides test helpers shared by kernelgen packages.
//
// Overview:
//   - Responsibility: Recording logger and error-code assertions
//   - Key Types: MockLogger, LogEntry
//   - Concurrency Model: MockLogger is safe for concurrent use
//   - Error Semantics: Test failures via testing.T
//
// Usage:
//
//	logger := testingx.NewMockLogger(t)
//	gen := generators.NewGenerator(fs, generators.WithLogger(logger))
//	logger.AssertLogged("INFO", "wrote")
package testingx

import (
	"fmt"
	"sync"
	"testing"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
)

// MockLogger records log calls for later assertions.
type MockLogger struct {
	t      testing.TB
	fields map[string]any
	store  *entryStore
}

type entryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single log entry.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
	Error   error
}

// NewMockLogger creates a new mock logger.
func NewMockLogger(t testing.TB) *MockLogger {
	return &MockLogger{
		t:      t,
		fields: map[string]any{},
		store:  &entryStore{},
	}
}

// With returns a logger sharing the same entries with extra fields attached.
func (m *MockLogger) With(kv ...any) logx.Logger {
	fields := make(map[string]any, len(m.fields))
	for k, v := range m.fields {
		fields[k] = v
	}
	for k, v := range flatten(kv) {
		fields[k] = v
	}
	return &MockLogger{t: m.t, fields: fields, store: m.store}
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, kv ...any) {
	m.log("DEBUG", msg, nil, kv)
}

// Info logs an info message.
func (m *MockLogger) Info(msg string, kv ...any) {
	m.log("INFO", msg, nil, kv)
}

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, kv ...any) {
	m.log("WARN", msg, nil, kv)
}

// Error logs an error message.
func (m *MockLogger) Error(err error, msg string, kv ...any) {
	m.log("ERROR", msg, err, kv)
}

func (m *MockLogger) log(level, msg string, err error, kv []any) {
	fields := make(map[string]any, len(m.fields)+len(kv)/2)
	for k, v := range m.fields {
		fields[k] = v
	}
	for k, v := range flatten(kv) {
		fields[k] = v
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	})
}

// flatten turns key-value arguments, including logx.Str/Int pairs, into a map.
func flatten(kv []any) map[string]any {
	flat := make([]any, 0, len(kv))
	for _, item := range kv {
		if pair, ok := item.([]any); ok && len(pair) == 2 {
			flat = append(flat, pair...)
			continue
		}
		flat = append(flat, item)
	}
	out := make(map[string]any, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out[fmt.Sprint(flat[i])] = flat[i+1]
	}
	return out
}

// Entries returns all log entries.
func (m *MockLogger) Entries() []LogEntry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	entries := make([]LogEntry, len(m.store.entries))
	copy(entries, m.store.entries)
	return entries
}

// Count returns how many entries match level and msg.
func (m *MockLogger) Count(level, msg string) int {
	var n int
	for _, entry := range m.Entries() {
		if entry.Level == level && entry.Message == msg {
			n++
		}
	}
	return n
}

// AssertLogged asserts that a message was logged.
func (m *MockLogger) AssertLogged(level, msg string) {
	m.t.Helper()
	if m.Count(level, msg) == 0 {
		m.t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
	}
}

// Clear clears all log entries.
func (m *MockLogger) Clear() {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = nil
}

// AssertCode asserts that an error has the expected code.
func AssertCode(t testing.TB, err error, expectedCode errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", expectedCode)
	}
	if code := errors.CodeOf(err); code != expectedCode {
		t.Errorf("Expected error code %s, got %s (%v)", expectedCode, code, err)
	}
}

// AssertNoError asserts that no error occurred.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}
