package syncauth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	guardDecisions *prometheus.CounterVec
	requests       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncup_guard_decisions_total",
			Help: "Session guard evaluations by decision and reason",
		}, []string{"decision", "reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncup_authenticator_requests_total",
			Help: "Outgoing requests seen by the authenticator by outcome",
		}, []string{"outcome"}),
	}

	var err error
	if m.guardDecisions, err = register(reg, m.guardDecisions); err != nil {
		return nil, err
	}
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector already on the registry
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *metrics) observeGuard(decision, reason string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(decision, reason).Inc()
}

func (m *metrics) observeRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}
