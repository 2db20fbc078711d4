// Package metrics holds the Prometheus collectors shared by the binaries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a dedicated registry plus the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	GenerateTotal   *prometheus.CounterVec
	GenerateLatency prometheus.Histogram
	ArtifactWrites  *prometheus.CounterVec
	AssignmentTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		GenerateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_variant_generate_total",
			Help: "Variant generations by outcome.",
		}, []string{"outcome"}),
		GenerateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lab_variant_generate_duration_seconds",
			Help:    "Latency of variant generation.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		ArtifactWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_variant_artifact_writes_total",
			Help: "Artifact writes by outcome.",
		}, []string{"outcome"}),
		AssignmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_variant_assignment_render_total",
			Help: "Assignment template fills by outcome.",
		}, []string{"outcome"}),
	}
	m.Registry.MustRegister(m.GenerateTotal, m.GenerateLatency, m.ArtifactWrites, m.AssignmentTotal)
	return m
}

// ObserveGenerate records one generation attempt that started at start.
func (m *Metrics) ObserveGenerate(start time.Time, err error) {
	m.GenerateLatency.Observe(time.Since(start).Seconds())
	m.GenerateTotal.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveWrite(err error) {
	m.ArtifactWrites.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveAssignment(err error) {
	m.AssignmentTotal.WithLabelValues(outcome(err)).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
