package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurodetect/internal/common"
)

func sine(n int, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		ti := float64(i) / common.SamplingRate
		out[i] = amp * math.Sin(2*math.Pi*freq*ti)
	}
	return out
}

func bandSum(bp BandPowers) float64 {
	return bp.Delta + bp.Theta + bp.Alpha + bp.Beta + bp.Gamma
}

func TestBandPowers_AlphaToneDominatesAlphaBand(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	set := e.Extract(sine(4096, 10, 1)) // 10 Hz sits inside alpha 8-13 Hz

	assert.Greater(t, set.BandPowers.Alpha, 0.9)
	assert.InDelta(t, 1.0, bandSum(set.BandPowers), 0.05)
}

func TestBandPowers_DeltaTone(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	set := e.Extract(sine(4096, 2, 1))

	assert.Greater(t, set.BandPowers.Delta, 0.9)
	assert.Less(t, set.BandPowers.Alpha, 0.05)
}

func TestBandPowers_SumNearOneAndNonNegative(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	// mixed tones across bands
	data := sine(4097, 2, 0.5)
	for i, v := range sine(4097, 10, 0.8) {
		data[i] += v
	}
	for i, v := range sine(4097, 40, 0.3) {
		data[i] += v
	}

	bp := e.Extract(data).BandPowers
	for _, v := range []float64{bp.Delta, bp.Theta, bp.Alpha, bp.Beta, bp.Gamma} {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 1.0, bandSum(bp), 0.05)
}

func TestExtract_DegenerateSignalUsesDefaults(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	set := e.Extract([]float64{1, 2})

	assert.Equal(t, DefaultBandPowers(), set.BandPowers)
	assert.Equal(t, DefaultStatistics(), set.Statistics)
	assert.Nil(t, set.Temporal)
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	data := sine(2048, 10, 2)

	a := e.Extract(data)
	b := e.Extract(data)
	assert.Equal(t, a, b)
}

func TestStatistics_Moments(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	st, temporal, err := e.statistics([]float64{1, -1, 1, -1, 1, -1, 1, -1})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, st.MeanAmplitude, 1e-12)
	assert.InDelta(t, 1.0, st.SignalVariance, 1e-12)
	assert.InDelta(t, 1.0, st.StandardDeviation, 1e-12)
	assert.InDelta(t, -2.0, st.Kurtosis, 1e-12) // two-point distribution
	assert.InDelta(t, 0.0, st.Skewness, 1e-12)
	assert.InDelta(t, 1.0, st.PeakAmplitude, 1e-12)
	assert.InDelta(t, 1.0, st.RMSAmplitude, 1e-12)
	assert.InDelta(t, 8.0, st.Energy, 1e-12)
	// every adjacent pair flips sign
	assert.InDelta(t, 7.0/8.0, st.ZeroCrossingRate, 1e-12)
	require.NotNil(t, temporal)
	assert.Equal(t, 7, temporal.ZeroCrossings)
}

func TestStatistics_DominantFrequency(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	_, temporal, err := e.statistics(sine(4096, 10, 1))
	require.NoError(t, err)
	require.NotNil(t, temporal)
	assert.InDelta(t, 10.0, temporal.DominantFrequency, 0.2)
}

func TestStatistics_SpectralCentroidOfTone(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	st, _, err := e.statistics(sine(4096, 20, 1))
	require.NoError(t, err)

	// spectral leakage pulls the centroid around, but it stays near the tone
	assert.InDelta(t, 20.0, st.SpectralCentroid, 10.0)
	assert.Greater(t, st.SpectralRolloff, 0.0)
}

func TestStatistics_ConstantSignal(t *testing.T) {
	e := NewExtractor(common.SamplingRate, nil)
	st, _, err := e.statistics([]float64{3, 3, 3, 3, 3, 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, st.SignalVariance)
	assert.Equal(t, 0.0, st.Kurtosis)
	assert.Equal(t, 0.0, st.Skewness)
	assert.Equal(t, 0.0, st.ZeroCrossingRate)
}
