package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"neurodetect/internal/common"
	"neurodetect/internal/service"
)

// Outcome is the evaluation result for one recording.
type Outcome struct {
	File       string  `json:"file"`
	Label      string  `json:"label"`
	QDA        string  `json:"qda"`
	TabNet     string  `json:"tabnet"`
	Ensemble   string  `json:"ensemble"`
	Confidence float64 `json:"confidence"`
	Err        string  `json:"error,omitempty"`
}

// Results aggregates a full evaluation run.
type Results struct {
	Outcomes  []Outcome     `json:"outcomes"`
	Total     int           `json:"total"`
	Failed    int           `json:"failed"`
	Correct   Correct       `json:"correct"`
	Confusion [3][3]int     `json:"confusion"` // [actual][predicted by ensemble]
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Correct counts matching predictions per decision source.
type Correct struct {
	QDA      int `json:"qda"`
	TabNet   int `json:"tabnet"`
	Ensemble int `json:"ensemble"`
}

// Accuracy returns the ensemble accuracy over successfully analyzed files.
func (r *Results) Accuracy() float64 {
	analyzed := r.Total - r.Failed
	if analyzed == 0 {
		return 0
	}
	return float64(r.Correct.Ensemble) / float64(analyzed)
}

// Runner drives the analyzer over a dataset with bounded concurrency.
type Runner struct {
	analyzer    *service.Analyzer
	concurrency int
}

// NewRunner wraps an analyzer for batch evaluation. concurrency < 1 means
// sequential.
func NewRunner(analyzer *service.Analyzer, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{analyzer: analyzer, concurrency: concurrency}
}

// Run analyzes every file and aggregates accuracy. Individual file failures
// are recorded, not fatal; the returned error covers only context cancellation.
func (r *Runner) Run(ctx context.Context, files []LabeledFile) (*Results, error) {
	start := time.Now()
	results := &Results{
		Outcomes: make([]Outcome, len(files)),
		Total:    len(files),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome := Outcome{File: f.Name, Label: f.Label}
			record, err := r.analyzer.AnalyzeFile(ctx, f.Path, f.Name)
			if err != nil {
				outcome.Err = err.Error()
				mu.Lock()
				results.Failed++
				results.Outcomes[i] = outcome
				mu.Unlock()
				log.Warn().Err(err).Str("file", f.Name).Msg("evaluation skipped file")
				return nil
			}

			outcome.QDA = record.QDA.PredictedClass
			outcome.TabNet = record.TabNet.PredictedClass
			outcome.Ensemble = record.Ensemble.PredictedClass
			outcome.Confidence = record.Ensemble.Confidence

			mu.Lock()
			if outcome.QDA == f.Label {
				results.Correct.QDA++
			}
			if outcome.TabNet == f.Label {
				results.Correct.TabNet++
			}
			if outcome.Ensemble == f.Label {
				results.Correct.Ensemble++
			}
			if ai, pi := classIndex(f.Label), classIndex(outcome.Ensemble); ai >= 0 && pi >= 0 {
				results.Confusion[ai][pi]++
			}
			results.Outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results.Elapsed = time.Since(start)
	log.Info().
		Int("total", results.Total).
		Int("failed", results.Failed).
		Float64("accuracy", results.Accuracy()).
		Dur("elapsed", results.Elapsed).
		Msg("evaluation completed")

	return results, nil
}

func classIndex(class string) int {
	for i, name := range common.ClassNames {
		if name == class {
			return i
		}
	}
	return -1
}
