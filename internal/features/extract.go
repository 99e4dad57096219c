package features

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// MetricsSink is the narrow metrics surface the extractor needs.
type MetricsSink interface {
	FeatureErrorsInc()
	ExtractionsInc()
}

// ErrDegenerateSignal marks signals that carry no usable information
// (empty or too short). Extraction substitutes defaults instead of failing.
var ErrDegenerateSignal = errors.New("degenerate signal")

// band is a half-open description of a canonical EEG frequency range;
// both edges are inclusive when selecting FFT bins.
type band struct {
	name      string
	low, high float64
}

var bands = []band{
	{"delta", 0.5, 4},
	{"theta", 4, 8},
	{"alpha", 8, 13},
	{"beta", 13, 30},
	{"gamma", 30, 50},
}

// epsilonPower is assigned to a band with no FFT bins in range.
const epsilonPower = 0.01

// Extractor computes the base feature battery against a fixed sampling rate.
type Extractor struct {
	samplingRate float64
	metrics      MetricsSink
}

// NewExtractor returns an extractor for the given sampling rate. metrics may
// be nil.
func NewExtractor(samplingRate float64, metrics MetricsSink) *Extractor {
	return &Extractor{samplingRate: samplingRate, metrics: metrics}
}

// Extract computes band powers and statistics from the sample sequence.
// It fails soft: a failing group is replaced by its documented defaults and
// the substitution is logged, so downstream stages always see a full Set.
func (e *Extractor) Extract(data []float64) Set {
	if e.metrics != nil {
		e.metrics.ExtractionsInc()
	}

	set := Set{}

	bp, err := e.bandPowers(data)
	if err != nil {
		log.Warn().Err(err).Msg("band power extraction failed, using uniform defaults")
		if e.metrics != nil {
			e.metrics.FeatureErrorsInc()
		}
		bp = DefaultBandPowers()
	}
	set.BandPowers = bp

	st, temporal, err := e.statistics(data)
	if err != nil {
		log.Warn().Err(err).Msg("statistical extraction failed, using safe defaults")
		if e.metrics != nil {
			e.metrics.FeatureErrorsInc()
		}
		st = DefaultStatistics()
		temporal = nil
	}
	set.Statistics = st
	set.Temporal = temporal

	return set
}

// bandPowers normalizes the signal, computes its FFT, and sums squared
// magnitudes of the strictly-positive-frequency bins inside each band,
// relative to the total positive-frequency power.
func (e *Extractor) bandPowers(data []float64) (BandPowers, error) {
	n := len(data)
	if n < 4 {
		return BandPowers{}, ErrDegenerateSignal
	}

	norm := make([]float64, n)
	m := floats.Sum(data) / float64(n)
	for i, v := range data {
		norm[i] = v - m
	}
	var ss float64
	for _, v := range norm {
		ss += v * v
	}
	if sd := math.Sqrt(ss / float64(n)); sd > 1e-10 {
		for i := range norm {
			norm[i] /= sd
		}
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, norm)

	// Strictly positive frequencies; for even n the Nyquist bin is excluded.
	lastPos := (n - 1) / 2
	power := make([]float64, lastPos+1)
	var total float64
	for k := 1; k <= lastPos; k++ {
		p := cmplx.Abs(coeffs[k])
		power[k] = p * p
		total += power[k]
	}
	if total < 1e-10 {
		total = 1.0
	}

	binFreq := e.samplingRate / float64(n)
	sumBand := func(low, high float64) float64 {
		var s float64
		hit := false
		for k := 1; k <= lastPos; k++ {
			f := float64(k) * binFreq
			if f >= low && f <= high {
				s += power[k]
				hit = true
			}
		}
		if !hit {
			return epsilonPower
		}
		return s / total
	}

	return BandPowers{
		Delta: sumBand(bands[0].low, bands[0].high),
		Theta: sumBand(bands[1].low, bands[1].high),
		Alpha: sumBand(bands[2].low, bands[2].high),
		Beta:  sumBand(bands[3].low, bands[3].high),
		Gamma: sumBand(bands[4].low, bands[4].high),
	}, nil
}

// statistics computes the 16 base descriptors and the temporal summary.
func (e *Extractor) statistics(data []float64) (Statistics, *Temporal, error) {
	n := len(data)
	if n < 4 {
		return Statistics{}, nil, ErrDegenerateSignal
	}

	st := Statistics{}

	// Time-domain moments (population definitions).
	m := floats.Sum(data) / float64(n)
	var m2, m3, m4, sumSq float64
	for _, v := range data {
		d := v - m
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
		sumSq += v * v
	}
	m2 /= float64(n)
	m3 /= float64(n)
	m4 /= float64(n)

	st.MeanAmplitude = m
	st.SignalVariance = m2
	st.StandardDeviation = math.Sqrt(m2)
	if m2 > 0 {
		st.Kurtosis = m4/(m2*m2) - 3 // excess kurtosis
		st.Skewness = m3 / math.Pow(m2, 1.5)
	}
	for _, v := range data {
		if a := math.Abs(v); a > st.PeakAmplitude {
			st.PeakAmplitude = a
		}
	}
	st.RMSAmplitude = math.Sqrt(sumSq / float64(n))

	// Magnitude spectrum over the lower half of the FFT.
	coeffs := fourier.NewFFT(n).Coefficients(nil, data)
	half := n / 2
	mag := make([]float64, half)
	freq := make([]float64, half)
	binFreq := e.samplingRate / float64(n)
	for k := 0; k < half; k++ {
		mag[k] = cmplx.Abs(coeffs[k])
		freq[k] = float64(k) * binFreq
	}

	if magSum := floats.Sum(mag); magSum > 0 {
		st.SpectralCentroid = floats.Dot(freq, mag) / magSum
		var spread float64
		for k, f := range freq {
			d := f - st.SpectralCentroid
			spread += d * d * mag[k]
		}
		st.SpectralBandwidth = math.Sqrt(spread / magSum)

		st.SpectralRolloff = 20.0
		var cum float64
		for k, v := range mag {
			cum += v
			if cum >= 0.85*magSum {
				st.SpectralRolloff = freq[k]
				break
			}
		}
	} else {
		st.SpectralCentroid = 10.0
		st.SpectralBandwidth = 5.0
		st.SpectralRolloff = 20.0
	}

	zeroCrossings := 0
	for i := 1; i < n; i++ {
		if math.Signbit(data[i]) != math.Signbit(data[i-1]) {
			zeroCrossings++
		}
	}
	st.ZeroCrossingRate = float64(zeroCrossings) / float64(n)

	st.Energy = sumSq

	// Shannon-style entropy of the normalized absolute-amplitude distribution.
	var absSum float64
	for _, v := range data {
		absSum += math.Abs(v)
	}
	absSum += 1e-10
	var h float64
	for _, v := range data {
		p := math.Abs(v) / absSum
		h -= p * math.Log(p+1e-10)
	}
	st.Entropy = h

	// Low-frequency spectral summary over the lowest 50 bins.
	if len(mag) > 50 {
		low := mag[:50]
		lm := floats.Sum(low) / 50
		var lv float64
		for _, v := range low {
			d := v - lm
			lv += d * d
		}
		st.MFCC1 = lm
		st.MFCC2 = math.Sqrt(lv / 50)
		st.MFCC3 = floats.Max(low) - floats.Min(low)
	}

	temporal := &Temporal{ZeroCrossings: zeroCrossings, Energy: sumSq}
	if len(mag) > 1 {
		peakBin := floats.MaxIdx(mag[1:]) + 1
		temporal.DominantFrequency = freq[peakBin]
	}

	return st, temporal, nil
}
