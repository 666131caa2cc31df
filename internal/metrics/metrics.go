// Package metrics counts test activity with Prometheus collectors.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/verte-zerg/stroop/internal/model"
)

// Outcome label values.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeTimeout   = "timeout"
)

var defaultBuckets = []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 2.5, 3, 4, 5, 7.5, 10}

// Manager owns the collectors on a private registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	trialsScored      *prometheus.CounterVec
	responseTime      *prometheus.HistogramVec
	sessionsCompleted *prometheus.CounterVec
	sessionAccuracy   *prometheus.GaugeVec
	storeFailures     *prometheus.CounterVec
}

// NewManager creates a Manager with all collectors registered.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stroop",
		histogramBuckets: defaultBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(m.registry)
	m.trialsScored = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trials_scored_total",
		Help:      "Scored trials by test type and outcome.",
	}, []string{"test_type", "outcome"})
	m.responseTime = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "response_time_seconds",
		Help:      "Response time of scored trials, timeouts included.",
		Buckets:   m.histogramBuckets,
	}, []string{"test_type"})
	m.sessionsCompleted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_completed_total",
		Help:      "Completed sessions by test type and difficulty.",
	}, []string{"test_type", "difficulty"})
	m.sessionAccuracy = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_session_accuracy_percent",
		Help:      "Accuracy of the most recent completed session per test type.",
	}, []string{"test_type"})
	m.storeFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_failures_total",
		Help:      "Failed store operations by operation.",
	}, []string{"op"})
	return m
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// TrialScored records one scored trial.
func (m *Manager) TrialScored(cfg model.SessionConfig, trial model.Trial) {
	tt := cfg.TestType.String()
	outcome := OutcomeIncorrect
	switch {
	case trial.TimedOut():
		outcome = OutcomeTimeout
	case trial.Correct != nil && *trial.Correct:
		outcome = OutcomeCorrect
	}
	m.trialsScored.WithLabelValues(tt, outcome).Inc()
	if trial.ResponseTime != nil {
		m.responseTime.WithLabelValues(tt).Observe(*trial.ResponseTime)
	}
}

// SessionCompleted records a finished session.
func (m *Manager) SessionCompleted(rec model.SessionRecord) {
	tt := rec.TestType.String()
	m.sessionsCompleted.WithLabelValues(tt, rec.Difficulty.String()).Inc()
	if rec.NumTrials > 0 {
		m.sessionAccuracy.WithLabelValues(tt).Set(float64(rec.CorrectAnswers) / float64(rec.NumTrials) * 100)
	}
}

// StoreFailed counts a failed load or save.
func (m *Manager) StoreFailed(op string) {
	m.storeFailures.WithLabelValues(op).Inc()
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
