package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RawIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodewave_raw_events_ingested_total",
		Help: "Total number of raw mutation signals accepted into a wave, labelled by kind.",
	}, []string{"kind"})

	RawFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodewave_raw_events_filtered_total",
		Help: "Total number of non-informative signals filtered on ingestion.",
	})

	RawDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodewave_raw_events_dropped_total",
		Help: "Total number of signals dropped because a dispatch was in progress.",
	})

	WavesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodewave_waves_dispatched_total",
		Help: "Total number of completed classify-reconcile-notify cycles.",
	})

	DomainEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodewave_domain_events_total",
		Help: "Total number of classified change events, labelled by kind.",
	}, []string{"kind"})

	ReconcileDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodewave_reconcile_drift_total",
		Help: "Total number of debug self-checks where the shadow diverged from the live topology.",
	})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodewave_dispatch_duration_ms",
		Help:    "End-to-end wave dispatch latency in milliseconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})
)
