package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TranscriptsProcessed.WithLabelValues("ok").Inc()
	m.TranscriptsProcessed.WithLabelValues("invalid").Add(2)
	m.MessagesScored.WithLabelValues("positive", "false").Inc()
	m.CacheHits.Inc()
	m.CacheMisses.Inc()
	m.SummaryFallbacks.Inc()
	m.TransformSeconds.Observe(0.02)
	m.ModelCallSeconds.Observe(0.3)
	m.SummaryCallSeconds.Observe(1.2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranscriptsProcessed.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TranscriptsProcessed.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesScored.WithLabelValues("positive", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	// Separate registries must not collide on metric names.
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())

	a.CacheHits.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHits))
}
