// Package metrics exports container resolution statistics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-ioc/framework/container"
)

// Collector holds the resolution metrics. It implements container.Observer.
//
//	c := container.New(container.WithObserver(metrics.NewCollector("ioc")))
type Collector struct {
	registry *prometheus.Registry

	Resolutions *prometheus.CounterVec   // id, source (cache|producer)
	Errors      *prometheus.CounterVec   // id, kind
	Duration    *prometheus.HistogramVec // id
}

// NewCollector creates a collector with its own registry, so several
// containers (and tests) can coexist in one process.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of successful container resolutions",
		},
		[]string{"id", "source"},
	)

	errs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_errors_total",
			Help:      "Total number of failed container resolutions",
		},
		[]string{"id", "kind"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent producing container instances",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		},
		[]string{"id"},
	)

	registry.MustRegister(resolutions, errs, duration)

	return &Collector{
		registry:    registry,
		Resolutions: resolutions,
		Errors:      errs,
		Duration:    duration,
	}
}

var _ container.Observer = (*Collector)(nil)

// OnResolve records a successful Get. Only fresh productions are timed.
func (c *Collector) OnResolve(id string, cached bool, elapsed time.Duration) {
	if cached {
		c.Resolutions.WithLabelValues(id, "cache").Inc()
		return
	}
	c.Resolutions.WithLabelValues(id, "producer").Inc()
	c.Duration.WithLabelValues(id).Observe(elapsed.Seconds())
}

// OnError records a failed Get.
func (c *Collector) OnError(id string, err error) {
	c.Errors.WithLabelValues(id, container.ErrorKind(err)).Inc()
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
