package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	GatewayTotal    *prometheus.CounterVec
	GatewayInFlight *prometheus.GaugeVec
	PollAttempts    *prometheus.CounterVec
	PollTotal       *prometheus.CounterVec
	PollInFlight    *prometheus.GaugeVec
	BackendTotal    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		GatewayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestra_gateway_requests_total",
			Help: "total number of requests sent to microservices",
		}, []string{"service", "method", "status"}),
		GatewayInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orchestra_gateway_in_flight_requests",
			Help: "number of in flight microservice requests",
		}, []string{"service"}),
		PollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestra_poll_attempts_total",
			Help: "total number of status polls",
		}, []string{"service"}),
		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestra_polls_total",
			Help: "total number of completed waits by outcome",
		}, []string{"service", "outcome"}),
		PollInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orchestra_polls_in_flight",
			Help: "number of waits currently polling",
		}, []string{"service"}),
		BackendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestra_backend_requests_total",
			Help: "total number of requests handled by the development backend",
		}, []string{"service", "method", "status"}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.GatewayTotal)
	reg.MustRegister(m.GatewayInFlight)
	reg.MustRegister(m.PollAttempts)
	reg.MustRegister(m.PollTotal)
	reg.MustRegister(m.PollInFlight)
	reg.MustRegister(m.BackendTotal)
}

func (m *Metrics) Disable(reg prometheus.Registerer) {
	reg.Unregister(m.GatewayTotal)
	reg.Unregister(m.GatewayInFlight)
	reg.Unregister(m.PollAttempts)
	reg.Unregister(m.PollTotal)
	reg.Unregister(m.PollInFlight)
	reg.Unregister(m.BackendTotal)
}
