package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurodetect/internal/classify"
	"neurodetect/internal/common"
	"neurodetect/internal/metrics"
	"neurodetect/internal/storage"
)

func writeToneFile(t *testing.T, freq float64, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		ti := float64(i) / common.SamplingRate
		fmt.Fprintf(&b, "%.6f\n", math.Sin(2*math.Pi*freq*ti))
	}
	path := filepath.Join(t.TempDir(), "signal.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	qda := classify.NewClassifier("QDA", classify.QDAThresholds(), classify.ModelParams{}, nil, nil)
	tabnet := classify.NewClassifier("TabNet", classify.TabNetThresholds(), classify.ModelParams{}, nil, nil)
	return NewAnalyzer(common.SamplingRate, qda, tabnet, opts)
}

func TestAnalyzeFile_AlphaToneIsNormal(t *testing.T) {
	a := newAnalyzer(t, Options{})
	path := writeToneFile(t, 10, 4096) // 10 Hz alpha tone

	record, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "alpha.csv", record.Filename)
	assert.Equal(t, 4096, record.SamplesAnalyzed)

	assert.Equal(t, common.ClassNormal, record.QDA.PredictedClass)
	assert.Equal(t, common.ClassNormal, record.TabNet.PredictedClass)
	assert.Equal(t, classify.StatusSuccess, record.QDA.Status)
	assert.Equal(t, classify.StatusSuccess, record.TabNet.Status)

	assert.Equal(t, common.ClassNormal, record.Ensemble.PredictedClass)
	assert.Equal(t, "Ensemble (QDA + TabNet)", record.Ensemble.Method)
	assert.Greater(t, record.Ensemble.Confidence, 80.0)
}

func TestAnalyzeFile_DeltaToneIsNeurodegeneration(t *testing.T) {
	a := newAnalyzer(t, Options{})
	path := writeToneFile(t, 2, 4096)

	record, err := a.AnalyzeFile(context.Background(), path, "delta.csv")
	require.NoError(t, err)

	assert.Equal(t, common.ClassNeurodegeneration, record.Ensemble.PredictedClass)
}

func TestAnalyzeFile_LoadErrorPropagates(t *testing.T) {
	a := newAnalyzer(t, Options{})
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("header_only\n"), 0o600))

	_, err := a.AnalyzeFile(context.Background(), path, "empty.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty.csv")
}

func TestAnalyzeFile_MissingFile(t *testing.T) {
	a := newAnalyzer(t, Options{})

	_, err := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "nope.csv")
	assert.Error(t, err)
}

func TestAnalyze_UnavailableModelDegradesEnsemble(t *testing.T) {
	qda := classify.NewClassifier("QDA", classify.QDAThresholds(), classify.ModelParams{}, classify.ErrModelUnavailable, nil)
	tabnet := classify.NewClassifier("TabNet", classify.TabNetThresholds(), classify.ModelParams{}, nil, nil)
	a := NewAnalyzer(common.SamplingRate, qda, tabnet, Options{})
	path := writeToneFile(t, 10, 4096)

	record, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	assert.Equal(t, classify.StatusUnavailable, record.QDA.Status)
	assert.Equal(t, "TabNet Only (QDA unavailable)", record.Ensemble.Method)
	assert.Equal(t, record.TabNet.PredictedClass, record.Ensemble.PredictedClass)
	assert.Equal(t, 0.0, record.Ensemble.QDAConfidence)
}

func TestAnalyze_BothUnavailableStillSucceeds(t *testing.T) {
	qda := classify.NewClassifier("QDA", classify.QDAThresholds(), classify.ModelParams{}, classify.ErrModelUnavailable, nil)
	tabnet := classify.NewClassifier("TabNet", classify.TabNetThresholds(), classify.ModelParams{}, classify.ErrModelUnavailable, nil)
	a := NewAnalyzer(common.SamplingRate, qda, tabnet, Options{})
	path := writeToneFile(t, 10, 4096)

	record, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	assert.Equal(t, common.ClassUnknown, record.Ensemble.PredictedClass)
	assert.Equal(t, 0.0, record.Ensemble.Confidence)
	assert.Equal(t, "No Valid Models", record.Ensemble.Method)
}

func TestAnalyzeFile_PersistsRecord(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	a := newAnalyzer(t, Options{Store: store})
	path := writeToneFile(t, 10, 4096)

	record, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	stored, err := store.GetAnalysis(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Ensemble, stored.Ensemble)
	assert.Equal(t, record.Filename, stored.Filename)
}

func TestAnalyzeFile_RecordsMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	a := newAnalyzer(t, Options{Metrics: m})
	path := writeToneFile(t, 10, 4096)

	_, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AnalysisFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal))
}

func TestAnalyzeFile_LoadFailureCountsInMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	a := newAnalyzer(t, Options{Metrics: m})

	_, err := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "nope.csv")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalLoadFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisFailures))
}

func TestAnalyze_UseCleanedSignal(t *testing.T) {
	a := newAnalyzer(t, Options{UseCleaned: true})
	path := writeToneFile(t, 10, 4096)

	record, err := a.AnalyzeFile(context.Background(), path, "alpha.csv")
	require.NoError(t, err)

	// the 10 Hz tone survives the 0.5-50 Hz bandpass
	assert.Equal(t, common.ClassNormal, record.Ensemble.PredictedClass)
}
