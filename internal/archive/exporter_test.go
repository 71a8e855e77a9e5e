package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideospace/internal/core"
	archivemem "ideospace/internal/infra/archive/memory"
	"ideospace/internal/infra/persistence/memory"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *core.Service {
	t.Helper()
	svc, err := core.NewService(context.Background(), memory.NewStore(), core.WithSeedDefaults(true))
	require.NoError(t, err)
	return svc
}

func readSnapshot(t *testing.T, st Store, key string) Snapshot {
	t.Helper()
	_, rc, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	return snap
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "snapshots/000001.json", SnapshotKey(1))
	assert.Equal(t, "snapshots/123456.json", SnapshotKey(123456))
}

func TestParseRevision(t *testing.T) {
	cases := map[string]struct {
		rev int
		ok  bool
	}{
		"snapshots/000042.json": {42, true},
		"snapshots/latest.json": {0, false},
		"other/000001.json":     {0, false},
		"snapshots/000001.txt":  {0, false},
		"snapshots/-00001.json": {0, false},
	}
	for key, want := range cases {
		rev, ok := parseRevision(key)
		assert.Equal(t, want.ok, ok, key)
		assert.Equal(t, want.rev, rev, key)
	}
}

func TestExporterWritesSnapshotOnChange(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	st := archivemem.New()
	metrics := &recordingMetrics{}
	exp, err := NewExporter(ctx, st, svc, WithClock(func() time.Time { return fixedNow }), WithMetrics(metrics))
	require.NoError(t, err)
	defer exp.Close()
	assert.Equal(t, 0, exp.Revision())

	partyID, err := svc.CreateParty(ctx, "Archivists", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, exp.Revision())

	infos, err := st.List(ctx, SnapshotPrefix)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "snapshots/000001.json", infos[0].Key)
	assert.Equal(t, "application/json", infos[0].ContentType)
	assert.Equal(t, "1", infos[0].Metadata["revision"])

	snap := readSnapshot(t, st, infos[0].Key)
	assert.Equal(t, 1, snap.Revision)
	assert.True(t, snap.GeneratedAt.Equal(fixedNow))
	assert.Len(t, snap.Ideologies, len(svc.ListIdeologies()))
	assert.Len(t, snap.Voters, len(svc.ListVoters()))
	found := false
	for _, p := range snap.Parties {
		if p.Party.ID == partyID {
			found = true
			assert.Equal(t, "Archivists", p.Party.Name)
		}
	}
	assert.True(t, found, "new party missing from snapshot")
	assert.Equal(t, []bool{true}, metrics.results("archive.export"))
}

func TestExporterResumesRevision(t *testing.T) {
	ctx := context.Background()
	st := archivemem.New()
	for _, key := range []string{SnapshotKey(3), SnapshotKey(7), "snapshots/notes.json", "other/000099.json"} {
		_, err := st.Put(ctx, key, strings.NewReader("{}"), PutOptions{})
		require.NoError(t, err)
	}
	svc := newService(t)
	exp, err := NewExporter(ctx, st, svc)
	require.NoError(t, err)
	defer exp.Close()
	assert.Equal(t, 7, exp.Revision())

	key, err := exp.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, SnapshotKey(8), key)
}

func TestExporterCloseStopsExports(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	st := archivemem.New()
	exp, err := NewExporter(ctx, st, svc)
	require.NoError(t, err)
	exp.Close()
	exp.Close()

	_, err = svc.CreateVoter(ctx, "Quiet", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, exp.Revision())
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) Put(context.Context, string, io.Reader, PutOptions) (Info, error) {
	return Info{}, f.err
}

func TestExportFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	boom := errors.New("bucket gone")
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	exp, err := NewExporter(ctx, failingStore{Store: archivemem.New(), err: boom}, svc, WithLogger(logger), WithMetrics(metrics))
	require.NoError(t, err)
	defer exp.Close()

	_, err = svc.CreateParty(ctx, "Unarchived", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, exp.Revision())
	assert.Contains(t, logger.messages("warn"), "snapshot export failed")
	assert.Equal(t, []bool{false}, metrics.results("archive.export"))

	_, err = exp.Export(ctx)
	require.ErrorIs(t, err, boom)
}

func TestExportRejectsTakenKey(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	st := archivemem.New()
	exp, err := NewExporter(ctx, st, svc)
	require.NoError(t, err)
	defer exp.Close()

	_, err = st.Put(ctx, SnapshotKey(1), strings.NewReader("{}"), PutOptions{})
	require.NoError(t, err)
	_, err = exp.Export(ctx)
	require.ErrorIs(t, err, ErrExists)
	assert.Equal(t, 0, exp.Revision())
}

type listErrStore struct {
	Store
}

func (listErrStore) List(context.Context, string) ([]Info, error) {
	return nil, errors.New("list refused")
}

func TestNewExporterListFailure(t *testing.T) {
	_, err := NewExporter(context.Background(), listErrStore{Store: archivemem.New()}, newService(t))
	require.ErrorContains(t, err, "list archived snapshots")
}
