package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_events_processed_total",
	Help: "Number of gateway events evaluated",
}, []string{"kind"})

var EventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_event_errors_total",
	Help: "Number of events dropped because policy, lists or attribution were unavailable",
}, []string{"kind"})

var EventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "globex_event_duration_seconds",
	Help:    "Time spent evaluating and acting on one event",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
}, []string{"kind"})

var Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_outcomes_total",
	Help: "Terminal outcome per module",
}, []string{"module", "outcome"})

var Punishments = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_punishments_total",
	Help: "Sanctions attempted, by kind and result",
}, []string{"punishment", "result"})

var Reverts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_reverts_total",
	Help: "Reverted state changes, by kind and result",
}, []string{"kind", "result"})

var AttributionLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "globex_attribution_lookups_total",
	Help: "Audit log lookups, by source",
}, []string{"source"})

var RESTRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "globex_rest_request_seconds",
	Help:    "Latency of sanction REST calls",
	Buckets: prometheus.DefBuckets,
}, []string{"route", "status"})

var TrackedKeys = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "globex_tracker_keys",
	Help: "Live (guild, user, module) keys in the violation tracker",
})

var ComponentHealthy = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "globex_component_healthy",
	Help: "1 when the watchdog considers the component healthy",
}, []string{"component"})

var ProcessRSS = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "globex_process_rss_bytes",
	Help: "Resident set size sampled by the watchdog",
})

var ProcessCPU = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "globex_process_cpu_percent",
	Help: "Process CPU usage sampled by the watchdog",
})
