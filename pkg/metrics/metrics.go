package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartrfq"

// HTTP holds the server-side request metrics.
type HTTP struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthFailures    prometheus.Counter
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected bearer tokens",
		}),
	}
}

// Middleware records count and latency per route template.
func (m *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Sync holds the client-side synchronization metrics, labelled by resource.
type Sync struct {
	CacheHits     *prometheus.CounterVec
	Fetches       *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	StaleDiscards *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
}

func NewSync(reg prometheus.Registerer) *Sync {
	factory := promauto.With(reg)
	counter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      name,
			Help:      help,
		}, []string{"resource"})
	}
	return &Sync{
		CacheHits:     counter("cache_hits_total", "Loads served from the in-memory store"),
		Fetches:       counter("fetches_total", "Network fetches issued"),
		FetchFailures: counter("fetch_failures_total", "Network fetches that failed"),
		StaleDiscards: counter("stale_discards_total", "Responses dropped because a newer request superseded them"),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of network fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
	}
}

// Track returns a func that observes the elapsed fetch time for resource.
func (s *Sync) Track(resource string) func() {
	start := time.Now()
	return func() {
		s.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}
}

// Pipeline holds the server-side mail and extraction metrics.
type Pipeline struct {
	InboundMessages     *prometheus.CounterVec
	ExtractionJobs      *prometheus.CounterVec
	QuotationsExtracted prometheus.Counter
	PushFailures        prometheus.Counter
}

func NewPipeline(reg prometheus.Registerer) *Pipeline {
	factory := promauto.With(reg)
	return &Pipeline{
		InboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "inbound_messages_total",
			Help:      "Inbound messages seen by the mailbox poller, by outcome",
		}, []string{"outcome"}),
		ExtractionJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "jobs_total",
			Help:      "Extraction jobs processed, by result",
		}, []string{"result"}),
		QuotationsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "quotations_total",
			Help:      "Quotations stored from supplier replies",
		}),
		PushFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "failures_total",
			Help:      "Push notifications that could not be delivered",
		}),
	}
}

// Labeled adapts a single-label counter vector to an Observe(label) sink.
type Labeled struct {
	Vec *prometheus.CounterVec
}

func (l Labeled) Observe(label string) {
	if l.Vec != nil {
		l.Vec.WithLabelValues(label).Inc()
	}
}
