package storage

import (
	"time"

	"neurodetect/internal/classify"
	"neurodetect/internal/preprocess"
)

// AnalysisRecord is the persisted form of one completed analysis. The JSON
// field names for the model results match the response payload, so stored
// records can be served back verbatim.
type AnalysisRecord struct {
	ID              string                   `json:"id"`
	Filename        string                   `json:"filename"`
	CreatedAt       time.Time                `json:"created_at"`
	SamplesAnalyzed int                      `json:"samples_analyzed"`
	QDA             classify.Result          `json:"QDA"`
	TabNet          classify.Result          `json:"TabNet"`
	Ensemble        classify.EnsembleResult  `json:"ensemble"`
	SignalQuality   preprocess.QualityReport `json:"signal_quality"`
}
