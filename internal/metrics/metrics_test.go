package metrics_test

import (
	"testing"

	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(_ *testing.T) {
	reg := prometheus.NewRegistry()

	_ = metrics.NewMetrics(reg)
}

func TestObserveRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	appMetrics.ObserveRun("export_tables", nil, 1700000000)
	appMetrics.ObserveRun("export_tables", assert.AnError, 1700000001)
	appMetrics.ObserveRun("export_tables", assert.AnError, 1700000002)

	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Runs.WithLabelValues("export_tables", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.Runs.WithLabelValues("export_tables", "failure")), 0)
	assert.InDelta(t, 1700000000, testutil.ToFloat64(appMetrics.LastSuccessfulRun.WithLabelValues("export_tables")), 0)
}
