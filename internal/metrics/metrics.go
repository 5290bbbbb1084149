// Package metrics holds the Prometheus collectors for the acquisition engine.
// Collectors register on the default registry, which /metrics serves.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "fontd"

var (
	CatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "lookups_total",
			Help:      "Catalog cache lookups by result (hit, miss, shared, stale)",
		},
		[]string{"result"},
	)

	CatalogFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetches_total",
			Help:      "Catalog network fetches by mode (blocking, background) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	AssetFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assets",
			Name:      "fetches_total",
			Help:      "Asset fetch attempts by kind (stylesheet, binary) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AssetFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assets",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of successful asset fetches in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	BinaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "binary_cache",
			Name:      "lookups_total",
			Help:      "Binary cache lookups by result (hit, miss, expired)",
		},
		[]string{"result"},
	)

	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loads",
			Name:      "total",
			Help:      "Family loads by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "queue_depth",
			Help:      "Families waiting for an admission slot",
		},
	)

	ActiveLoads = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "active_loads",
			Help:      "Family loads currently holding an admission slot",
		},
	)

	ResourcesTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resources",
			Name:      "tracked",
			Help:      "Injected presentation resources currently tracked",
		},
	)

	ResourcesEvictedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resources",
			Name:      "evicted_total",
			Help:      "Presentation resources removed, by reason (age, cap)",
		},
		[]string{"reason"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome (registered, duplicate, unbound, failed)",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		CatalogLookupsTotal,
		CatalogFetchesTotal,
		AssetFetchesTotal,
		AssetFetchDuration,
		BinaryCacheTotal,
		LoadsTotal,
		QueueDepth,
		ActiveLoads,
		ResourcesTracked,
		ResourcesEvictedTotal,
		RegistrationsTotal,
	)
}
