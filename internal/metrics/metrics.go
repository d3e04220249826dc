// ABOUTME: Prometheus metrics for the player
// ABOUTME: Counts preloads, fetches, segment switches and dropped stale end notices
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the player collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	preloads    *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	switches    *prometheus.CounterVec
	staleEnds   prometheus.Counter
	playing     prometheus.Gauge
	cachedHours prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		preloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "radio_preloads_total", Help: "Hour preloads by result"},
			[]string{"result"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "radio_segment_fetches_total", Help: "Segment fetches by segment and result"},
			[]string{"segment", "result"},
		),
		switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "radio_segment_switches_total", Help: "Active source switches by reason"},
			[]string{"reason"},
		),
		staleEnds: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "radio_stale_end_notices_total", Help: "End notices ignored because their source was replaced"},
		),
		playing: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "radio_playing", Help: "1 while the player is playing"},
		),
		cachedHours: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "radio_cached_hours", Help: "Hours with decoded segments in memory"},
		),
	}

	m.Registry.MustRegister(m.preloads, m.fetches, m.switches, m.staleEnds, m.playing, m.cachedHours)
	return m
}

// Handler exposes the registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Preload records the outcome of a preload call
func (m *Metrics) Preload(result string) {
	if m == nil {
		return
	}
	m.preloads.WithLabelValues(result).Inc()
}

// Fetch records the outcome of one segment fetch
func (m *Metrics) Fetch(segment, result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(segment, result).Inc()
}

// Switch records a new active source
func (m *Metrics) Switch(reason string) {
	if m == nil {
		return
	}
	m.switches.WithLabelValues(reason).Inc()
}

// StaleEnd records an ignored end notice
func (m *Metrics) StaleEnd() {
	if m == nil {
		return
	}
	m.staleEnds.Inc()
}

// SetPlaying records the playing state
func (m *Metrics) SetPlaying(playing bool) {
	if m == nil {
		return
	}
	if playing {
		m.playing.Set(1)
	} else {
		m.playing.Set(0)
	}
}

// SetCachedHours records the cache size
func (m *Metrics) SetCachedHours(n int) {
	if m == nil {
		return
	}
	m.cachedHours.Set(float64(n))
}
