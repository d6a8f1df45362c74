package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the labeling service.
type Metrics struct {
	LabelsTotal       *prometheus.CounterVec
	SentencesIngested prometheus.Counter
	SuggestionsTotal  *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers the labeling service metrics once per process.
//
// Metrics:
//   - labeling_labels_total{category,source} - labels recorded
//   - labeling_sentences_ingested_total - sentences stored from paragraphs
//   - labeling_suggestions_total{result} - suggestion requests
//   - labeling_http_request_duration_seconds{method,route,status} - request latency
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			LabelsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "labeling_labels_total",
					Help: "Total number of labels recorded",
				},
				[]string{"category", "source"},
			),

			SentencesIngested: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "labeling_sentences_ingested_total",
					Help: "Total number of sentences stored from submitted paragraphs",
				},
			),

			SuggestionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "labeling_suggestions_total",
					Help: "Total number of category suggestion requests",
				},
				[]string{"result"}, // "ok", "error" or "disabled"
			),

			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "labeling_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route", "status"},
			),
		}
	})
	return globalMetrics
}

// Middleware observes request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
