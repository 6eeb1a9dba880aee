// Package metrics records per-run Prometheus metrics for carousel builds
// and publishes. Metrics live on a private registry and are written to a
// node_exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gigslides/pkg/layout"
)

const namespace = "gigslides"

// Publish outcomes
const (
	StatusPublished = "published"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusDryRun    = "dry_run"
)

// Run holds the metrics of one CLI invocation
type Run struct {
	registry *prometheus.Registry
	started  time.Time

	gigsFetched  *prometheus.GaugeVec
	slidesPacked *prometheus.GaugeVec
	oversize     *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	truncated    *prometheus.GaugeVec
	publish      *prometheus.CounterVec
	duration     prometheus.Gauge
}

// New creates a Run with its own registry
func New() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.gigsFetched = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gigs_fetched",
		Help:      "Gigs listed for the region after filtering",
	}, []string{"region"})
	r.slidesPacked = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "slides_packed",
		Help:      "Content slides in the carousel after limiting",
	}, []string{"region"})
	r.oversize = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oversize_gigs_total",
		Help:      "Gigs taller than a slide",
	}, []string{"region"})
	r.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gigs_dropped_total",
		Help:      "Gigs cut by the carousel slide cap",
	}, []string{"region"})
	r.truncated = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "carousel_truncated",
		Help:      "1 when the carousel hit the slide cap",
	}, []string{"region"})
	r.publish = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_total",
		Help:      "Carousel publish attempts by outcome",
	}, []string{"region", "status"})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the run",
	})

	r.registry.MustRegister(
		r.gigsFetched, r.slidesPacked, r.oversize, r.dropped,
		r.truncated, r.publish, r.duration,
	)
	return r
}

// Registry exposes the private registry
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveBuild records the packing outcome for a region
func (r *Run) ObserveBuild(region string, gigs int, set layout.SlideSet) {
	r.gigsFetched.WithLabelValues(region).Set(float64(gigs))
	r.slidesPacked.WithLabelValues(region).Set(float64(len(set.Slides)))
	r.oversize.WithLabelValues(region).Add(float64(len(set.WarningsOf(layout.WarningOversize))))

	dropped := 0
	for _, w := range set.WarningsOf(layout.WarningSlideCountExceeded) {
		dropped += w.DroppedGigs
	}
	r.dropped.WithLabelValues(region).Add(float64(dropped))

	truncated := 0.0
	if set.Truncated {
		truncated = 1
	}
	r.truncated.WithLabelValues(region).Set(truncated)
}

// ObservePublish counts one publish outcome
func (r *Run) ObservePublish(region, status string) {
	r.publish.WithLabelValues(region, status).Inc()
}

// WriteTextfile stamps the run duration and writes every metric to path.
// An empty path is a no-op.
func (r *Run) WriteTextfile(path string) error {
	r.duration.Set(time.Since(r.started).Seconds())
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
