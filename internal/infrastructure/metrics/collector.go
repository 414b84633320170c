package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

const namespace = "lookupbot"

// Collector holds all Prometheus metrics for the bot on its own registry.
type Collector struct {
	registry *prometheus.Registry

	sourceLookups    *prometheus.CounterVec
	queries          *prometheus.CounterVec
	fastPathTimeouts prometheus.Counter
	answerDuration   *prometheus.HistogramVec
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates and registers the bot metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sourceLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_lookups_total",
				Help:      "Knowledge source lookups by outcome (hit, miss, error).",
			},
			[]string{"source", "outcome"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Classified user queries by kind.",
			},
			[]string{"kind"},
		),
		fastPathTimeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fast_path_timeouts_total",
				Help:      "General lookups that exceeded the fast-path deadline.",
			},
		),
		answerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "answer_duration_seconds",
				Help:      "Time from receiving a query to the final answer.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 20, 30, 60},
			},
			[]string{"kind"},
		),
	}

	c.registry.MustRegister(
		c.sourceLookups,
		c.queries,
		c.fastPathTimeouts,
		c.answerDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) SourceLookup(source, outcome string) {
	c.sourceLookups.WithLabelValues(source, outcome).Inc()
}

func (c *Collector) Query(kind domain.IntentKind) {
	c.queries.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) FastPathTimeout() {
	c.fastPathTimeouts.Inc()
}

func (c *Collector) AnswerDuration(kind domain.IntentKind, d time.Duration) {
	c.answerDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}
