package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ideospace/internal/core"
	"ideospace/pkg/domain"
)

// SnapshotPrefix is the key prefix every exported snapshot is written under.
const SnapshotPrefix = "snapshots/"

// Source is the read and subscribe surface the exporter needs from the
// core service.
type Source interface {
	ListIdeologies() []domain.Ideology
	PopularityReport() []core.PartyPopularity
	ListVoters() []domain.Voter
	Subscribe(t domain.EventType, h core.Handler) (unsubscribe func(), err error)
}

// Snapshot is the archived document.
type Snapshot struct {
	Revision    int                    `json:"revision"`
	GeneratedAt time.Time              `json:"generated_at"`
	Ideologies  []domain.Ideology      `json:"ideologies"`
	Parties     []core.PartyPopularity `json:"parties"`
	Voters      []domain.Voter         `json:"voters"`
}

// SnapshotKey returns the object key for a revision.
func SnapshotKey(revision int) string {
	return fmt.Sprintf("%s%06d.json", SnapshotPrefix, revision)
}

// Exporter writes a snapshot to the archive every time the core signals
// ExternalDataChanged. Revisions continue after the highest snapshot
// already archived.
type Exporter struct {
	store   Store
	source  Source
	logger  core.Logger
	metrics core.MetricsRecorder
	now     func() time.Time

	mu          sync.Mutex
	revision    int
	unsubscribe func()
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(l core.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records one "archive.export" observation per export.
func WithMetrics(m core.MetricsRecorder) ExporterOption {
	return func(e *Exporter) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock overrides the time source stamped on snapshots.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// NewExporter resumes the revision counter from store and subscribes to
// source. Call Close to unsubscribe.
func NewExporter(ctx context.Context, st Store, source Source, opts ...ExporterOption) (*Exporter, error) {
	e := &Exporter{
		store:   st,
		source:  source,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	existing, err := st.List(ctx, SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("list archived snapshots: %w", err)
	}
	for _, info := range existing {
		if rev, ok := parseRevision(info.Key); ok && rev > e.revision {
			e.revision = rev
		}
	}
	if e.unsubscribe, err = source.Subscribe(domain.ExternalDataChanged, e.handle); err != nil {
		return nil, fmt.Errorf("subscribe exporter: %w", err)
	}
	e.logger.Info("snapshot archive ready", "driver", string(st.Driver()), "revision", e.revision)
	return e, nil
}

func (e *Exporter) handle(ctx context.Context, _ domain.Event) error {
	_, err := e.Export(ctx)
	return err
}

// Export writes the current state as the next revision and returns its key.
func (e *Exporter) Export(ctx context.Context) (key string, err error) {
	start := e.now()
	defer func() { e.metrics.Observe(ctx, "archive.export", err == nil, e.now().Sub(start)) }()

	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Revision:    e.revision + 1,
		GeneratedAt: start,
		Ideologies:  e.source.ListIdeologies(),
		Parties:     e.source.PopularityReport(),
		Voters:      e.source.ListVoters(),
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key = SnapshotKey(snap.Revision)
	if _, err := e.store.Put(ctx, key, bytes.NewReader(body), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"revision": strconv.Itoa(snap.Revision)},
	}); err != nil {
		e.logger.Warn("snapshot export failed", "key", key, "error", err)
		return "", fmt.Errorf("export snapshot %d: %w", snap.Revision, err)
	}
	e.revision = snap.Revision
	e.logger.Debug("snapshot exported", "key", key, "bytes", len(body))
	return key, nil
}

// Revision returns the last revision written.
func (e *Exporter) Revision() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// Close stops listening for changes.
func (e *Exporter) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func parseRevision(key string) (int, bool) {
	name, ok := strings.CutPrefix(key, SnapshotPrefix)
	if !ok {
		return 0, false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	rev, err := strconv.Atoi(name)
	if err != nil || rev < 0 {
		return 0, false
	}
	return rev, true
}
