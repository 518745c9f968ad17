package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errand_http_requests_total",
			Help: "Total number of HTTP requests processed by the errand service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "errand_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	errandsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "errand_created_total",
			Help: "Total number of errands posted.",
		},
	)
	errandsAcceptedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "errand_accepted_total",
			Help: "Total number of errands accepted by a runner.",
		},
	)
	chatMessagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "errand_chat_messages_sent_total",
			Help: "Total number of chat messages sent.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "errand_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		errandsCreatedTotal,
		errandsAcceptedTotal,
		chatMessagesSentTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncErrandCreated() {
	errandsCreatedTotal.Inc()
}

func IncErrandAccepted() {
	errandsAcceptedTotal.Inc()
}

func IncChatMessageSent() {
	chatMessagesSentTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
