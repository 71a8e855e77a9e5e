package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ideospace/internal/infra/persistence/memory"
	"ideospace/pkg/domain"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

type observation struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (m *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{operation: operation, success: success})
}

func (m *recordingMetrics) has(operation string, success bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.obs {
		if o.operation == operation && o.success == success {
			return true
		}
	}
	return false
}

// newTestService builds a service over a fresh memory gateway holding only
// the default ideologies.
func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	gw := memory.NewStore()
	svc, err := NewService(context.Background(), gw, opts...)
	require.NoError(t, err)
	return svc, gw
}

func mustCreateParty(t *testing.T, svc *Service, name string, x, y int) int {
	t.Helper()
	id, err := svc.CreateParty(context.Background(), name, x, y)
	require.NoError(t, err)
	return id
}

func mustCreateVoter(t *testing.T, svc *Service, name string, x, y int) int {
	t.Helper()
	id, err := svc.CreateVoter(context.Background(), name, x, y)
	require.NoError(t, err)
	return id
}

func ideologyID(t *testing.T, svc *Service, name string) int {
	t.Helper()
	for _, i := range svc.ListIdeologies() {
		if i.Name == name {
			return i.ID
		}
	}
	t.Fatalf("ideology %q not loaded", name)
	return domain.NoID
}

type eventLog struct {
	events []domain.Event
}

func (l *eventLog) record(_ context.Context, e domain.Event) error {
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []domain.EventType {
	out := make([]domain.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func (l *eventLog) String() string { return fmt.Sprint(l.types()) }
