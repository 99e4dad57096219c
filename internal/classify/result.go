// Package classify maps the extended feature set to a diagnosis through two
// independently thresholded rule cascades and fuses them into one decision.
package classify

// Status tags on a classification result.
const (
	StatusSuccess     = "success"
	StatusUnavailable = "unavailable"
	StatusError       = "error"
)

// Result is the output of a single classifier. Probabilities are ordered
// [normal, seizure, neurodegeneration] and sum to approximately 1.
type Result struct {
	PredictedClass string     `json:"predicted_class"`
	Confidence     float64    `json:"confidence"`
	Probabilities  [3]float64 `json:"probabilities"`
	Model          string     `json:"model"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
}

// OK reports whether the result carries a usable prediction.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// EnsembleResult is the fused decision. It is derived strictly from the two
// classifier results and never re-derives probabilities.
type EnsembleResult struct {
	PredictedClass   string  `json:"predicted_class"`
	Confidence       float64 `json:"confidence"`
	Method           string  `json:"method"`
	QDAConfidence    float64 `json:"qda_confidence"`
	TabNetConfidence float64 `json:"tabnet_confidence"`
}
