package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ClassificationOutcome *prometheus.CounterVec
	ClassificationLatency prometheus.Histogram
	EligibilityRequests   *prometheus.CounterVec
	ProductsRecommended   prometheus.Histogram
	PersistenceFailures   *prometheus.CounterVec
	IngestedProducts      *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClassificationOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfare_classification_total",
			Help: "Assessment classifications by source (ai, cache, fallback) and failure kind",
		}, []string{"source", "reason"}),

		ClassificationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "welfare_classification_duration_seconds",
			Help:    "Duration of assessment classification including fallback",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		EligibilityRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfare_eligibility_requests_total",
			Help: "Eligibility evaluations by outcome (matched, general, error)",
		}, []string{"outcome"}),

		ProductsRecommended: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "welfare_products_recommended",
			Help:    "Number of products returned per assessment",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),

		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfare_persistence_failures_total",
			Help: "Non-fatal write failures by record kind",
		}, []string{"kind"}),

		IngestedProducts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "welfare_ingested_products_total",
			Help: "Products collected from sources by outcome",
		}, []string{"source", "outcome"}),
	}
}

func (m *Metrics) IncClassification(source, reason string) {
	if m != nil {
		m.ClassificationOutcome.WithLabelValues(source, reason).Inc()
	}
}

func (m *Metrics) ObserveClassification(d time.Duration) {
	if m != nil {
		m.ClassificationLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncEligibility(outcome string) {
	if m != nil {
		m.EligibilityRequests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveRecommended(n int) {
	if m != nil {
		m.ProductsRecommended.Observe(float64(n))
	}
}

func (m *Metrics) IncPersistenceFailure(kind string) {
	if m != nil {
		m.PersistenceFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncIngested(source, outcome string) {
	if m != nil {
		m.IngestedProducts.WithLabelValues(source, outcome).Inc()
	}
}
