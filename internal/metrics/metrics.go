// Package metrics holds the Prometheus collectors of the inventory core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealink"

// Metrics groups the counters updated by the services.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SearchesIssued     prometheus.Counter
	SearchesCancelled  prometheus.Counter
	SearchesFailed     prometheus.Counter
	IngredientsCreated prometheus.Counter
	RecordsWritten     prometheus.Counter
	IngestFailures     *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg creates unregistered
// collectors, which is what tests use.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SearchesIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "searches_issued_total",
			Help:      "Catalog searches sent to the remote store after the quiet period.",
		}),
		SearchesCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "searches_cancelled_total",
			Help:      "Pending or in-flight catalog searches superseded by newer input.",
		}),
		SearchesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "searches_failed_total",
			Help:      "Catalog searches that returned an error.",
		}),
		IngredientsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "ingredients_created_total",
			Help:      "User-scoped ingredients created by the resolver.",
		}),
		RecordsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "records_written_total",
			Help:      "Inventory records written to the ledger.",
		}),
		IngestFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "ingest_failures_total",
			Help:      "Failed ingestion attempts by reason.",
		}, []string{"reason"}),
	}
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// SearchIssued records a search sent to the store.
func (m *Metrics) SearchIssued() {
	if m != nil {
		inc(m.SearchesIssued)
	}
}

// SearchCancelled records a superseded search.
func (m *Metrics) SearchCancelled() {
	if m != nil {
		inc(m.SearchesCancelled)
	}
}

// SearchFailed records a failed search.
func (m *Metrics) SearchFailed() {
	if m != nil {
		inc(m.SearchesFailed)
	}
}

// IngredientCreated records a new user-scoped ingredient.
func (m *Metrics) IngredientCreated() {
	if m != nil {
		inc(m.IngredientsCreated)
	}
}

// Written records n inventory records written.
func (m *Metrics) Written(n int) {
	if m != nil && m.RecordsWritten != nil {
		m.RecordsWritten.Add(float64(n))
	}
}

// IngestFailed records a failed ingestion with a short reason label.
func (m *Metrics) IngestFailed(reason string) {
	if m != nil && m.IngestFailures != nil {
		m.IngestFailures.WithLabelValues(reason).Inc()
	}
}
