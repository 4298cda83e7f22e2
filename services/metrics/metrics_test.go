package metricsvc

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

	m.GuardDecisions.WithLabelValues("redirect", "login").Inc()
	m.GuardDecisions.WithLabelValues("redirect", "login").Inc()
	m.Submissions.WithLabelValues("vocational", "confirmed").Inc()
	m.LiveEngines.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("redirect", "login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("vocational", "confirmed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LiveEngines))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)

	// registering twice on the same registry panics
	assert.Panics(t, func() { NewMetrics(reg) })
}
