package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heartform_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heartform_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Upstream metrics
	wakeProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heartform_wake_probes_total",
			Help: "Wake probes sent to the inference service",
		},
		[]string{"outcome"},
	)

	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heartform_predictions_total",
			Help: "Prediction submissions by outcome",
		},
		[]string{"outcome"},
	)

	predictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heartform_prediction_duration_seconds",
			Help:    "Round trip time of prediction requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "heartform_sessions_active",
			Help: "Number of live form sessions",
		},
	)
)

// Prediction outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeDeferred  = "deferred"
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies. Paths use the gin route
// template so parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordWakeProbe records a wake probe; reached is false on transport failure.
func RecordWakeProbe(reached bool) {
	outcome := "unreachable"
	if reached {
		outcome = "reached"
	}
	wakeProbesTotal.WithLabelValues(outcome).Inc()
}

// RecordPrediction records a submission outcome. Deferred submissions never
// leave the process and carry no duration.
func RecordPrediction(outcome string, duration time.Duration) {
	predictionsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeDeferred {
		predictionDuration.Observe(duration.Seconds())
	}
}

func RecordSessions(count int) {
	activeSessions.Set(float64(count))
}
