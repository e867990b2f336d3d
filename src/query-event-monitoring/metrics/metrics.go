package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds the self-monitoring metrics of the poll scheduler. Each instance owns
// its registry so tests and multiple schedulers do not share counters.
type Collectors struct {
	registry *prometheus.Registry

	PollsTotal        prometheus.Counter
	PollFailuresTotal prometheus.Counter
	EventsBuiltTotal  prometheus.Counter
	EventsServedTotal prometheus.Counter
	EventCacheSize    prometheus.Gauge
	PollDuration      prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_event_polls_total",
			Help: "Total number of successful polls of the statement history table",
		}),
		PollFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_event_poll_failures_total",
			Help: "Total number of polls where the statement history could not be read",
		}),
		EventsBuiltTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_event_events_built_total",
			Help: "Total number of query events built from statement rows",
		}),
		EventsServedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_event_events_served_total",
			Help: "Total number of query events handed to the caller",
		}),
		EventCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "query_event_cache_size",
			Help: "Number of built query events not yet handed to the caller",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "query_event_poll_duration_seconds",
			Help:    "Time spent reading the statement history table per poll",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.PollsTotal,
		c.PollFailuresTotal,
		c.EventsBuiltTotal,
		c.EventsServedTotal,
		c.EventCacheSize,
		c.PollDuration,
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the registry the collectors are registered with.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordPoll records a successful poll that produced n events in elapsedSeconds.
func (c *Collectors) RecordPoll(n int, elapsedSeconds float64) {
	if c == nil {
		return
	}
	c.PollsTotal.Inc()
	c.EventsBuiltTotal.Add(float64(n))
	if elapsedSeconds >= 0 {
		c.PollDuration.Observe(elapsedSeconds)
	}
}

// RecordPollFailure records a poll that returned no data.
func (c *Collectors) RecordPollFailure() {
	if c == nil {
		return
	}
	c.PollFailuresTotal.Inc()
}

// RecordServed records one delivered event and the remaining cache depth.
func (c *Collectors) RecordServed(pending int) {
	if c == nil {
		return
	}
	c.EventsServedTotal.Inc()
	c.EventCacheSize.Set(float64(pending))
}

// SetCacheSize updates the cache depth gauge.
func (c *Collectors) SetCacheSize(pending int) {
	if c == nil {
		return
	}
	c.EventCacheSize.Set(float64(pending))
}
