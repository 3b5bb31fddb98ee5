package vault

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/reel/internal/source"
)

// Metrics exposes Prometheus collectors for vault activity.
type Metrics struct {
	ingests       *prometheus.CounterVec
	ingestedBytes prometheus.Counter
	deleted       prometheus.Counter
}

// MustNewMetrics registers the vault collectors on reg. Collectors already
// registered under the same names are reused. Any other registration error
// panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ingests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "ingest_total",
			Help:      "Put attempts by source shape and result.",
		},
		[]string{"source", "result"},
	)
	ingestedBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "ingested_bytes_total",
			Help:      "Payload bytes committed by successful puts.",
		},
	)
	deleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "deleted_total",
			Help:      "Delete calls that completed, including deletes of absent ids.",
		},
	)

	if err := reg.Register(ingests); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		ingests = already.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(ingestedBytes); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		ingestedBytes = already.ExistingCollector.(prometheus.Counter)
	}
	if err := reg.Register(deleted); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		deleted = already.ExistingCollector.(prometheus.Counter)
	}

	return &Metrics{ingests: ingests, ingestedBytes: ingestedBytes, deleted: deleted}
}

func (m *Metrics) observeIngest(kind source.Kind, size int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ingests.WithLabelValues(kind.String(), "error").Inc()
		return
	}
	m.ingests.WithLabelValues(kind.String(), "ok").Inc()
	m.ingestedBytes.Add(float64(size))
}

func (m *Metrics) observeDelete() {
	if m == nil {
		return
	}
	m.deleted.Inc()
}
