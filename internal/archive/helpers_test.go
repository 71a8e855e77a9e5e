package archive

import (
	"context"
	"sync"
	"time"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs map[string][]string
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.msgs == nil {
		l.msgs = make(map[string][]string)
	}
	l.msgs[level] = append(l.msgs[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.add("error", msg) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs[level]...)
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs map[string][]bool
}

func (m *recordingMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.obs == nil {
		m.obs = make(map[string][]bool)
	}
	m.obs[op] = append(m.obs[op], success)
}

func (m *recordingMetrics) results(op string) []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.obs[op]
}
