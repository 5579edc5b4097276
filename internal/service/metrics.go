package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the domain counters exported next to the HTTP metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	documentsProcessed *prometheus.CounterVec
	complianceChecks   *prometheus.CounterVec
}

// NewMetrics registers the domain counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_processed_total",
				Help: "Documents run through text extraction, by result.",
			},
			[]string{"result"},
		),
		complianceChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_checks_total",
				Help: "Compliance checks evaluated, by outcome status.",
			},
			[]string{"status"},
		),
	}
	for _, c := range []prometheus.Collector{m.documentsProcessed, m.complianceChecks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) documentProcessed(result string) {
	if m == nil {
		return
	}
	m.documentsProcessed.WithLabelValues(result).Inc()
}

func (m *Metrics) complianceChecked(status string) {
	if m == nil {
		return
	}
	m.complianceChecks.WithLabelValues(status).Inc()
}
