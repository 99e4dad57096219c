package signal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurodetect/internal/common"
)

func TestParse_SingleColumn(t *testing.T) {
	input := "12.5\n-3.25\n0\n7\n"
	samples, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, -3.25, 0, 7}, samples)
}

func TestParse_SingleRowCSV(t *testing.T) {
	samples, err := Parse(strings.NewReader("1,2,3,4,5"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, samples)
}

func TestParse_HeaderRowStripped(t *testing.T) {
	input := "Unnamed,X1,X2,X3\nrow1,0.5,1.5,2.5\nrow2,3.5,4.5,5.5\n"
	samples, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	// label column is non-numeric and dropped, values flatten row-major
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5}, samples)
}

func TestParse_WhitespaceSeparated(t *testing.T) {
	input := "1.0 2.0 3.0\n4.0 5.0 6.0\n"
	samples, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, samples, 6)
}

func TestParse_NaNValuesDropped(t *testing.T) {
	samples, err := Parse(strings.NewReader("1.0,NaN,2.0"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, samples)
}

func TestParse_RaggedRowsFallBackToTokens(t *testing.T) {
	input := "1,2,3\n4,5\nlabel,6\n"
	samples, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, samples)
}

func TestParse_ScientificNotationKept(t *testing.T) {
	samples, err := Parse(strings.NewReader("1e2,-2.5E-1"))
	require.NoError(t, err)
	assert.Equal(t, []float64{100, -0.25}, samples)
}

func TestParse_AllTextIsEmptySignal(t *testing.T) {
	_, err := Parse(strings.NewReader("alpha,beta\ngamma,delta\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySignal))
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptySignal))
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eeg.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2,3,4\n"), 0o600))

	raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, common.SamplingRate, raw.SamplingRate)
	assert.Len(t, raw.Samples, 4)
	assert.InDelta(t, 4.0/common.SamplingRate, raw.Duration(), 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestLoad_EmptyFileWrapsEmptySignal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySignal))
}
