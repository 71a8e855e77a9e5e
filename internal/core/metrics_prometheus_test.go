package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideospace/internal/infra/persistence/memory"
)

func TestPrometheusRecorderCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.Observe(context.Background(), "party.create", true, 2*time.Millisecond)
	rec.Observe(context.Background(), "party.create", false, time.Millisecond)
	rec.Observe(context.Background(), "party.create", true, time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Millisecond)

	assert.InDelta(t, 2.0, testutil.ToFloat64(rec.operations.WithLabelValues("party.create", "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("party.create", "error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(rec.durations, "ideospace_operation_duration_seconds"))
}

func TestPrometheusRecorderWiredThroughService(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	gw := memory.NewStore()
	svc, err := NewService(context.Background(), gw, WithMetrics(rec))
	require.NoError(t, err)

	mustCreateParty(t, svc, "P", 0, 0)
	mustCreateVoter(t, svc, "V", 1, 1)

	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("party.create", "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("propagate.party", "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("propagate.voter", "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("ideology.load", "success")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"ideospace_operations_total", "ideospace_operation_duration_seconds"}, names)
}
