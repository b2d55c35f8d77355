// Package metrics holds the Prometheus collectors for termgraph.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matsen/termgraph/internal/viz"
)

// Namespace prefixes every metric name.
const Namespace = "termgraph"

// Collector holds all Prometheus metrics for one process.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	MetadataFetches *prometheus.CounterVec
	LayoutDuration  prometheus.Histogram
	ViewsMounted    prometheus.Gauge

	GraphNodes    prometheus.Gauge
	GraphEdges    prometheus.Gauge
	DanglingEdges prometheus.Gauge
}

// NewCollector creates a collector with its own registry, so tests and
// multiple servers never collide on registration.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		MetadataFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "metadata_fetches_total",
				Help:      "Metadata fetches by result (ok or fallback)",
			},
			[]string{"result"},
		),
		LayoutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "layout_duration_seconds",
				Help:      "Time spent computing a layout",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		ViewsMounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "views_mounted",
			Help:      "Currently mounted graph views",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the most recently built graph",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_edges",
			Help:      "Edges in the most recently built graph",
		}),
		DanglingEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "graph_dangling_edges",
			Help:      "Edges with an unresolvable endpoint in the most recently built graph",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.MetadataFetches,
		c.LayoutDuration,
		c.ViewsMounted,
		c.GraphNodes,
		c.GraphEdges,
		c.DanglingEdges,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveMetadata counts one settled metadata fetch.
func (c *Collector) ObserveMetadata(_ string, err error) {
	result := "ok"
	if err != nil {
		result = "fallback"
	}
	c.MetadataFetches.WithLabelValues(result).Inc()
}

// ObserveLayout records one layout run.
func (c *Collector) ObserveLayout(d time.Duration) {
	c.LayoutDuration.Observe(d.Seconds())
}

// SetGraph records the size of a built graph.
func (c *Collector) SetGraph(s viz.Stats) {
	c.GraphNodes.Set(float64(s.Nodes))
	c.GraphEdges.Set(float64(s.Edges))
	c.DanglingEdges.Set(float64(s.Dangling))
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
