package metrics

// Sink adapts Metrics to the narrow interfaces the pipeline packages accept,
// avoiding a dependency from those packages on prometheus types. A nil *Sink
// is valid and records nothing.
type Sink struct {
	m *Metrics
}

// NewSink wraps m; m may be nil.
func NewSink(m *Metrics) *Sink {
	if m == nil {
		return nil
	}
	return &Sink{m: m}
}

// FeatureErrorsInc counts a feature computation replaced by defaults.
func (s *Sink) FeatureErrorsInc() {
	if s == nil {
		return
	}
	s.m.FeatureErrors.Inc()
}

// ExtractionsInc counts a completed feature extraction.
func (s *Sink) ExtractionsInc() {
	if s == nil {
		return
	}
	s.m.ExtractionsTotal.Inc()
}

// PredictionsInc counts a prediction by model and class.
func (s *Sink) PredictionsInc(model, class string) {
	if s == nil {
		return
	}
	s.m.Predictions.WithLabelValues(model, class).Inc()
}

// FallbacksInc counts a deterministic classifier fallback.
func (s *Sink) FallbacksInc(model string) {
	if s == nil {
		return
	}
	s.m.PredictionFallbacks.WithLabelValues(model).Inc()
}
