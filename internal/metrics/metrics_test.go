package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEnableDisable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.GatewayTotal.WithLabelValues("microservice_dataset", "POST", "200").Inc()
	m.PollAttempts.WithLabelValues("microservice_dataset").Add(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GatewayTotal.WithLabelValues("microservice_dataset", "POST", "200")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.PollAttempts.WithLabelValues("microservice_dataset")))

	// registering twice must fail, after disable it must succeed
	assert.Panics(t, func() { m.Enable(reg) })
	m.Disable(reg)
	assert.NotPanics(t, func() { m.Enable(reg) })
}
