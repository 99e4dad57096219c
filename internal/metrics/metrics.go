// Package metrics provides Prometheus metrics collection for the analysis
// service. It defines the counters, gauges, and histograms exposed on the
// metrics endpoint for monitoring signal processing and classification.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the analysis service.
type Metrics struct {
	// Pipeline metrics
	AnalysesTotal      prometheus.Counter   // Total number of analyses started
	AnalysisFailures   prometheus.Counter   // Total number of analyses that failed outright
	AnalysisDuration   prometheus.Histogram // End-to-end analysis duration in seconds
	SignalLoadFailures prometheus.Counter   // Total number of signal files rejected at load

	// Preprocessing and feature metrics
	PreprocessFallbacks prometheus.Counter   // Preprocessing runs that fell back to the raw signal
	QualityScores       prometheus.Histogram // Distribution of signal quality scores
	ExtractionsTotal    prometheus.Counter   // Total number of feature extractions
	ExtractionDuration  prometheus.Histogram // Feature extraction latency in seconds
	FeatureErrors       prometheus.Counter   // Feature computations replaced by defaults

	// Classification metrics
	Predictions          *prometheus.CounterVec // Predictions by model and class
	PredictionFallbacks  *prometheus.CounterVec // Deterministic fallbacks by model
	ModelsUnavailable    prometheus.Gauge       // Number of models that failed to load
	PredictionConfidence prometheus.Histogram   // Distribution of ensemble confidence

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		AnalysesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of analyses started",
		}),
		AnalysisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "analysis_failures_total",
			Help: "Total number of analyses that failed outright",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		SignalLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "signal_load_failures_total",
			Help: "Total number of signal files rejected at load",
		}),
		PreprocessFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "preprocess_fallbacks_total",
			Help: "Preprocessing runs that fell back to the raw signal",
		}),
		QualityScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_quality_scores",
			Help:    "Distribution of signal quality scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		ExtractionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "feature_extractions_total",
			Help: "Total number of feature extractions",
		}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feature_extraction_duration_seconds",
			Help:    "Feature extraction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		FeatureErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "feature_errors_total",
			Help: "Feature computations replaced by defaults",
		}),
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Predictions by model and class",
		}, []string{"model", "class"}),
		PredictionFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_fallbacks_total",
			Help: "Deterministic fallbacks by model",
		}, []string{"model"}),
		ModelsUnavailable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "models_unavailable",
			Help: "Number of models that failed to load",
		}),
		PredictionConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Distribution of ensemble confidence (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
