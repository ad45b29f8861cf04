package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/newscheck/internal/model"
)

// instruments holds the server's Prometheus collectors.
type instruments struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	modelLoaded prometheus.Gauge
}

func newInstruments(reg *prometheus.Registry) (*instruments, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	in := &instruments{
		registry: reg,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newscheck",
			Name:      "predictions_total",
			Help:      "Predictions served, by predicted label and request channel.",
		}, []string{"label", "channel"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newscheck",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		modelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "newscheck",
			Name:      "model_loaded",
			Help:      "1 when a trained model is loaded, 0 in degraded mode.",
		}),
	}

	for _, c := range []prometheus.Collector{
		in.predictions,
		in.duration,
		in.modelLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (in *instruments) handler() http.Handler {
	return promhttp.HandlerFor(in.registry, promhttp.HandlerOpts{})
}

func (in *instruments) observePrediction(r model.PredictionResult, channel model.PredictionChannel) {
	in.predictions.WithLabelValues(string(r.Label()), string(channel)).Inc()
}

// middleware times every request. Unmatched routes share one label so
// arbitrary paths cannot grow the series count.
func (in *instruments) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		in.duration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
