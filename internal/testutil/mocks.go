package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// Delivery records a single batch handed to a MockSink
type Delivery struct {
	At       time.Time
	Records  []synth.Record
	Started  time.Time
	Finished time.Time
	Location string
}

// MockSink provides a mock sink for testing
type MockSink struct {
	mu           sync.Mutex
	deliveries   []Delivery
	deleted      []string
	deliverError error
	deliverDelay time.Duration
	ignoreCancel bool
	deleteError  error
	inFlight     int
	maxInFlight  int
	closed       bool
}

func NewMockSink() *MockSink {
	return &MockSink{
		deliveries: make([]Delivery, 0),
		deleted:    make([]string, 0),
	}
}

func (m *MockSink) SetDeliverError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliverError = err
}

func (m *MockSink) SetDeliverDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliverDelay = delay
}

// SetIgnoreCancel makes delayed deliveries sleep through context
// cancellation, simulating a sink stuck in blocking I/O
func (m *MockSink) SetIgnoreCancel(ignore bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreCancel = ignore
}

func (m *MockSink) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
}

func (m *MockSink) Deliver(ctx context.Context, at time.Time, batch []synth.Record) (string, error) {
	started := time.Now()

	m.mu.Lock()
	delay := m.deliverDelay
	err := m.deliverError
	ignoreCancel := m.ignoreCancel
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	if delay > 0 {
		if ignoreCancel {
			time.Sleep(delay)
		} else {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				m.mu.Lock()
				m.inFlight--
				m.mu.Unlock()
				return "", ctx.Err()
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--

	if err != nil {
		return "", err
	}

	location := fmt.Sprintf("mock://%d", len(m.deliveries))
	m.deliveries = append(m.deliveries, Delivery{
		At:       at,
		Records:  batch,
		Started:  started,
		Finished: time.Now(),
		Location: location,
	})
	return location, nil
}

func (m *MockSink) Delete(_ context.Context, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}

	m.deleted = append(m.deleted, location)
	return nil
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockSink) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Delivery, len(m.deliveries))
	copy(result, m.deliveries)
	return result
}

func (m *MockSink) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.deleted))
	copy(result, m.deleted)
	return result
}

func (m *MockSink) CountDeliveries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deliveries)
}

func (m *MockSink) CountDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

// MaxInFlight reports the largest number of concurrent Deliver calls observed
func (m *MockSink) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *MockSink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// TestLogger provides a logger that captures logs for testing
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) log(level, msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]interface{}),
	}

	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			entry.Fields[key] = fields[i+1]
		}
	}

	l.entries = append(l.entries, entry)
}

func (l *TestLogger) GetEntries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, len(l.entries))
	copy(result, l.entries)
	return result
}

func (l *TestLogger) GetEntriesByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, 0)
	for _, entry := range l.entries {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

func (l *TestLogger) HasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "ERROR" {
			return true
		}
	}
	return false
}

func (l *TestLogger) HasWarning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "WARN" {
			return true
		}
	}
	return false
}

// Logger returns a *slog.Logger that writes to this TestLogger
func (l *TestLogger) Logger() *slog.Logger {
	return slog.New(&testLogHandler{logger: l})
}

// testLogHandler implements slog.Handler for TestLogger
type testLogHandler struct {
	logger *TestLogger
	attrs  []slog.Attr
	groups []string
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()
	msg := r.Message

	// Collect all attributes
	fields := make([]interface{}, 0, r.NumAttrs()*2)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, a.Key, a.Value.Any())
		return true
	})

	// Add handler-level attributes
	for _, attr := range h.attrs {
		fields = append(fields, attr.Key, attr.Value.Any())
	}

	h.logger.log(level, msg, fields...)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &testLogHandler{
		logger: h.logger,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *testLogHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name
	return &testLogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// WaitFor waits for a condition to be true with timeout
func WaitFor(t TestingT, condition func() bool, timeout time.Duration, msgAndArgs ...interface{}) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		<-ticker.C
		if time.Now().After(deadline) {
			t.Errorf("timeout waiting for condition: %v", msgAndArgs)
			return false
		}
	}
}

// TestingT is a minimal interface for testing
type TestingT interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}
