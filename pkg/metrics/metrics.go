package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

const namespace = "token_locator"

// Metrics holds the collectors of the locator service.
type Metrics struct {
	Registry *prometheus.Registry

	Lookups       *prometheus.CounterVec
	LookupErrors  *prometheus.CounterVec
	RingUpdates   prometheus.Counter
	ReplicaCounts *prometheus.HistogramVec
}

// New registers ring gauges that read tm on every scrape, plus the lookup
// counters updated by the placement service.
func New(tm *locator.TokenMetadata) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_lookups_total",
			Help:      "Natural endpoint lookups by keyspace.",
		}, []string{"keyspace"}),
		LookupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_lookup_errors_total",
			Help:      "Failed natural endpoint lookups by keyspace.",
		}, []string{"keyspace"}),
		RingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ring_updates_total",
			Help:      "Token ownership updates applied from membership.",
		}),
		ReplicaCounts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replicas_per_lookup",
			Help:      "Number of endpoints returned per lookup.",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		}, []string{"keyspace"}),
	}

	reg.MustRegister(
		m.Lookups,
		m.LookupErrors,
		m.RingUpdates,
		m.ReplicaCounts,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ring_tokens",
			Help:      "Tokens currently on the ring.",
		}, func() float64 { return float64(tm.Size()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ring_endpoints",
			Help:      "Distinct endpoints owning tokens.",
		}, func() float64 { return float64(len(tm.Endpoints())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ring_version",
			Help:      "Version of the published ring snapshot.",
		}, func() float64 { return float64(tm.RingVersion()) }),
	)
	return m
}
