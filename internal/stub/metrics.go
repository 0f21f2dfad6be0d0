package stub

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	batchIDs *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gate_stub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		batchIDs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gate_stub",
			Name:      "batch_request_ids_total",
			Help:      "Request ids submitted to execute, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.requests, m.batchIDs)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *metrics) observeBatch(submitted, processed int) {
	m.batchIDs.WithLabelValues("processed").Add(float64(processed))
	m.batchIDs.WithLabelValues("rejected").Add(float64(submitted - processed))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
