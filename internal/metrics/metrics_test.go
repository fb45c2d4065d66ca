package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromSinkRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSink(reg)
	require.NoError(t, err)

	s.RecordScenario("S1", true, 20*time.Millisecond)
	s.RecordScenario("S2", true, 30*time.Millisecond)
	s.RecordScenario("S3", false, time.Millisecond)
	s.RecordSweep(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.scenarios.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.scenarios.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.lastSweep.WithLabelValues("succeeded")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.duration))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err)

	second.RecordScenario("S1", true, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.scenarios.WithLabelValues("succeeded")))
}
