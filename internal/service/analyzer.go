// Package service orchestrates the analysis pipeline: signal loading,
// preprocessing, feature extraction and expansion, dual classification, and
// ensemble fusion, with the result persisted for later retrieval.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"neurodetect/internal/classify"
	"neurodetect/internal/features"
	"neurodetect/internal/metrics"
	"neurodetect/internal/preprocess"
	"neurodetect/internal/signal"
	"neurodetect/internal/storage"
)

// Analyzer runs the end-to-end analysis pipeline. Only signal loading can
// fail the analysis; every later stage degrades to documented defaults so a
// loadable file always produces a result.
type Analyzer struct {
	pre        *preprocess.Preprocessor
	extractor  *features.Extractor
	qda        *classify.Classifier
	tabnet     *classify.Classifier
	store      *storage.Store
	metrics    *metrics.Metrics
	useCleaned bool
	timeout    time.Duration
}

// Options carries the optional collaborators and pipeline switches.
type Options struct {
	Store      *storage.Store   // nil disables persistence
	Metrics    *metrics.Metrics // nil disables metrics
	UseCleaned bool             // classify on the cleaned signal instead of the raw one
	Timeout    time.Duration    // per-analysis classification deadline, 0 means none
}

// NewAnalyzer assembles the pipeline for the given sampling rate.
func NewAnalyzer(samplingRate float64, qda, tabnet *classify.Classifier, opts Options) *Analyzer {
	return &Analyzer{
		pre:        preprocess.New(samplingRate),
		extractor:  features.NewExtractor(samplingRate, metrics.NewSink(opts.Metrics)),
		qda:        qda,
		tabnet:     tabnet,
		store:      opts.Store,
		metrics:    opts.Metrics,
		useCleaned: opts.UseCleaned,
		timeout:    opts.Timeout,
	}
}

// AnalyzeFile loads a signal file and analyzes it. filename is the
// caller-facing name recorded with the result; path is where the bytes live.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, filename string) (storage.AnalysisRecord, error) {
	raw, err := signal.Load(path)
	if err != nil {
		if a.metrics != nil {
			a.metrics.SignalLoadFailures.Inc()
			a.metrics.AnalysisFailures.Inc()
		}
		return storage.AnalysisRecord{}, fmt.Errorf("load signal %s: %w", filename, err)
	}
	return a.Analyze(ctx, raw, filename)
}

// Analyze runs the pipeline over an already loaded signal.
func (a *Analyzer) Analyze(ctx context.Context, raw signal.Raw, filename string) (storage.AnalysisRecord, error) {
	start := time.Now()
	if a.metrics != nil {
		a.metrics.AnalysesTotal.Inc()
	}

	cleaned, report := a.pre.Run(raw)
	if a.metrics != nil {
		a.metrics.QualityScores.Observe(float64(report.Quality.Score))
		if !report.Successful {
			a.metrics.PreprocessFallbacks.Inc()
		}
	}

	data := raw.Samples
	if a.useCleaned && report.Successful {
		data = cleaned.Samples
	}

	ext := features.Expand(a.extractor.Extract(data))

	qdaRes, tabnetRes := a.classifyParallel(ctx, ext)
	ensemble := classify.Combine(qdaRes, tabnetRes)

	record := storage.AnalysisRecord{
		ID:              uuid.NewString(),
		Filename:        filename,
		CreatedAt:       time.Now().UTC(),
		SamplesAnalyzed: len(data),
		QDA:             qdaRes,
		TabNet:          tabnetRes,
		Ensemble:        ensemble,
		SignalQuality:   report.Quality,
	}

	if a.store != nil {
		if err := a.store.SaveAnalysis(record); err != nil {
			log.Error().Err(err).Str("id", record.ID).Msg("failed to persist analysis")
			if a.metrics != nil {
				a.metrics.ErrorsTotal.Inc()
			}
		}
	}

	if a.metrics != nil {
		a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		a.metrics.PredictionConfidence.Observe(ensemble.Confidence)
	}

	log.Info().
		Str("id", record.ID).
		Str("file", filename).
		Str("class", ensemble.PredictedClass).
		Float64("confidence", ensemble.Confidence).
		Str("method", ensemble.Method).
		Dur("elapsed", time.Since(start)).
		Msg("analysis completed")

	return record, nil
}

// classifyParallel runs both models concurrently under the configured
// deadline. A model that misses the deadline yields an error result; the
// ensemble then degrades to the remaining model.
func (a *Analyzer) classifyParallel(ctx context.Context, ext features.ExtendedSet) (classify.Result, classify.Result) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var qdaRes, tabnetRes classify.Result
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qdaRes = predictWithContext(ctx, a.qda, ext)
		return nil
	})
	g.Go(func() error {
		tabnetRes = predictWithContext(ctx, a.tabnet, ext)
		return nil
	})
	g.Wait() //nolint:errcheck // goroutines never return errors

	return qdaRes, tabnetRes
}

func predictWithContext(ctx context.Context, c *classify.Classifier, ext features.ExtendedSet) classify.Result {
	done := make(chan classify.Result, 1)
	go func() {
		done <- c.Predict(ext)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		log.Warn().Str("model", c.Name()).Err(ctx.Err()).Msg("classification deadline exceeded")
		return classify.ErrorResult(c.Name(), ctx.Err())
	}
}
