package hdbscan

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Session reports to. A nil
// *Metrics records nothing.
type Metrics struct {
	// Operations counts Session operations by op and outcome ("ok"/"error").
	Operations *prometheus.CounterVec
	// CacheLookups counts cache hits and misses by cache ("density",
	// "extraction") and result ("hit"/"miss").
	CacheLookups *prometheus.CounterVec
	// PhaseDuration measures pipeline phases in seconds.
	PhaseDuration *prometheus.HistogramVec
	// Clusters is the number of clusters in the latest extraction.
	Clusters prometheus.Gauge
	// NoisePoints is the number of noise points in the latest extraction.
	NoisePoints prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdbscan_operations_total",
				Help: "Total number of session operations",
			},
			[]string{"op", "outcome"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdbscan_cache_lookups_total",
				Help: "Session cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		PhaseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "hdbscan_phase_duration_seconds",
				Help: "Duration of clustering pipeline phases in seconds",
				// From sub-millisecond extraction to multi-second MSTs.
				Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"phase"},
		),
		Clusters: f.NewGauge(prometheus.GaugeOpts{
			Name: "hdbscan_clusters",
			Help: "Number of clusters in the latest extraction",
		}),
		NoisePoints: f.NewGauge(prometheus.GaugeOpts{
			Name: "hdbscan_noise_points",
			Help: "Number of noise points in the latest extraction",
		}),
	}
}

func (m *Metrics) operation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) cacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) phase(name string, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) extraction(clusters, noise int) {
	if m == nil {
		return
	}
	m.Clusters.Set(float64(clusters))
	m.NoisePoints.Set(float64(noise))
}
