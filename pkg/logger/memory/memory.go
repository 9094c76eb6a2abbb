// Package memory provides a LoggerInstance that keeps records in memory.
// It is used by tests to assert on the warnings emitted while building and
// analysing knowledge graphs.
package memory

import (
	"strings"
	"sync"
)

// Record is a single captured log call.
type Record struct {
	Level   string
	Message string
	Keyvals []any
}

// Value returns the value logged for key, if any.
func (r Record) Value(key string) (any, bool) {
	for i := 0; i+1 < len(r.Keyvals); i += 2 {
		if k, ok := r.Keyvals[i].(string); ok && k == key {
			return r.Keyvals[i+1], true
		}
	}
	return nil, false
}

type MemoryLogger struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (m *MemoryLogger) add(level, message string, keyvals []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, Record{Level: level, Message: message, Keyvals: keyvals})
}

func (m *MemoryLogger) Log(message string, keyvals ...any)   { m.add("log", message, keyvals) }
func (m *MemoryLogger) Debug(message string, keyvals ...any) { m.add("debug", message, keyvals) }
func (m *MemoryLogger) Info(message string, keyvals ...any)  { m.add("info", message, keyvals) }
func (m *MemoryLogger) Warn(message string, keyvals ...any)  { m.add("warn", message, keyvals) }
func (m *MemoryLogger) Error(message string, keyvals ...any) { m.add("error", message, keyvals) }

// Fatal records the call without exiting so tests can observe it.
func (m *MemoryLogger) Fatal(message string, keyvals ...any) { m.add("fatal", message, keyvals) }

// Records returns a copy of everything captured so far.
func (m *MemoryLogger) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Find returns the records at level whose message contains substr.
func (m *MemoryLogger) Find(level, substr string) []Record {
	var out []Record
	for _, r := range m.Records() {
		if r.Level == level && strings.Contains(r.Message, substr) {
			out = append(out, r)
		}
	}
	return out
}
