package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Appends       *prometheus.CounterVec
	Rejected      *prometheus.CounterVec
	Components    *prometheus.GaugeVec
	Instants      *prometheus.GaugeVec
	Flushes       *prometheus.CounterVec
	FlushDuration prometheus.Histogram
}

// NewMetrics registers the recorder metrics with registry. A nil registry gets a
// private one so that several recorders can live in one process.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	factory := promauto.With(registry)

	return &Metrics{
		Appends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "temporal_recorder_appends_total",
			Help: "Readings appended, by stream",
		}, []string{"stream"}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "temporal_recorder_rejected_total",
			Help: "Readings rejected, by stream and reason",
		}, []string{"stream", "reason"}),
		Components: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "temporal_recorder_components",
			Help: "Sequences held by a stream",
		}, []string{"stream"}),
		Instants: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "temporal_recorder_instants",
			Help: "Instants held by a stream",
		}, []string{"stream"}),
		Flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "temporal_recorder_flushes_total",
			Help: "Stream saves, by result",
		}, []string{"result"}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "temporal_recorder_flush_duration_seconds",
			Help:    "Time spent saving one stream",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (m *Metrics) observe(key string, components, instants int) {
	m.Components.WithLabelValues(key).Set(float64(components))
	m.Instants.WithLabelValues(key).Set(float64(instants))
}

func (m *Metrics) forget(key string) {
	m.Appends.DeleteLabelValues(key)
	m.Rejected.DeletePartialMatch(prometheus.Labels{"stream": key})
	m.Components.DeleteLabelValues(key)
	m.Instants.DeleteLabelValues(key)
}
