// Package preprocess cleans raw EEG signals and scores their quality.
//
// The pipeline never fails fatally: each step that cannot be applied is
// skipped with a warning and the signal passes through unchanged.
package preprocess

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"neurodetect/internal/signal"
)

const (
	bandpassOrder = 4
	highpassFreq  = 0.5  // Hz
	lowpassFreq   = 50.0 // Hz
	notchFreq     = 50.0 // Hz, power line
	notchQ        = 30.0
	outlierZ      = 5.0
	madScale      = 1.4826 // MAD to standard deviation under normality
)

// Preprocessor applies the cleaning pipeline against a fixed sampling rate.
// Filters are designed once at construction.
type Preprocessor struct {
	samplingRate float64
	bandpass     SOS
	notch        SOS
}

// Report records which steps were applied and the quality of the result.
type Report struct {
	OriginalSamples  int           `json:"original_samples"`
	ProcessedSamples int           `json:"processed_samples"`
	StepsApplied     []string      `json:"steps_applied"`
	StepsSkipped     []string      `json:"steps_skipped,omitempty"`
	Quality          QualityReport `json:"signal_quality"`
	Successful       bool          `json:"preprocessing_successful"`
}

// New designs the filters for the given sampling rate. Filter design failures
// are tolerated; the affected steps are skipped at run time.
func New(samplingRate float64) *Preprocessor {
	p := &Preprocessor{samplingRate: samplingRate}

	bp, err := ButterBandpass(bandpassOrder, highpassFreq, lowpassFreq, samplingRate)
	if err != nil {
		log.Warn().Err(err).Msg("bandpass design failed, step will be skipped")
	} else {
		p.bandpass = bp
	}

	nf, err := Notch(notchFreq, notchQ, samplingRate)
	if err != nil {
		log.Warn().Err(err).Msg("notch design failed, step will be skipped")
	} else {
		p.notch = nf
	}

	return p
}

// Run cleans the raw signal and returns the cleaned copy with a report.
// On a completely empty input it returns the input unchanged with a failed
// report; individual step failures only skip that step.
func (p *Preprocessor) Run(raw signal.Raw) (signal.Raw, Report) {
	report := Report{OriginalSamples: len(raw.Samples)}
	if len(raw.Samples) == 0 {
		report.Quality = AssessQuality(raw.Samples)
		return raw, report
	}

	data := append([]float64(nil), raw.Samples...)

	data = removeDCOffset(data)
	report.StepsApplied = append(report.StepsApplied, "DC removal")

	cleaned, removed := rejectOutliers(data, outlierZ)
	if removed > 0 {
		data = cleaned
		report.StepsApplied = append(report.StepsApplied, "outlier removal")
	}

	if p.bandpass != nil && len(data) > 1 {
		data = p.bandpass.FiltFilt(data)
		report.StepsApplied = append(report.StepsApplied, "bandpass filter")
	} else {
		report.StepsSkipped = append(report.StepsSkipped, "bandpass filter")
	}

	if p.notch != nil && len(data) > 1 {
		data = p.notch.FiltFilt(data)
		report.StepsApplied = append(report.StepsApplied, "notch filter")
	} else {
		report.StepsSkipped = append(report.StepsSkipped, "notch filter")
	}

	data = robustNormalize(data)
	report.StepsApplied = append(report.StepsApplied, "normalization")

	report.ProcessedSamples = len(data)
	report.Quality = AssessQuality(data)
	report.Successful = true

	log.Debug().
		Int("steps", len(report.StepsApplied)).
		Int("samples", len(data)).
		Str("quality", report.Quality.Overall).
		Msg("preprocessing completed")

	return signal.Raw{Samples: data, SamplingRate: raw.SamplingRate}, report
}

func removeDCOffset(data []float64) []float64 {
	m := mean(data)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - m
	}
	return out
}

// rejectOutliers drops samples whose z-score magnitude reaches threshold.
// A zero-variance signal has no defined z-scores and passes through.
func rejectOutliers(data []float64, threshold float64) ([]float64, int) {
	m := mean(data)
	sd := stddev(data, m)
	if sd <= 0 {
		return data, 0
	}

	out := data[:0:0]
	for _, v := range data {
		if math.Abs(v-m)/sd < threshold {
			out = append(out, v)
		}
	}
	return out, len(data) - len(out)
}

// robustNormalize centers on the median and scales by 1.4826*MAD, falling
// back to median subtraction alone when the MAD is zero.
func robustNormalize(data []float64) []float64 {
	med := median(data)
	dev := make([]float64, len(data))
	for i, v := range data {
		dev[i] = math.Abs(v - med)
	}
	mad := median(dev)

	out := make([]float64, len(data))
	if mad > 0 {
		scale := madScale * mad
		for i, v := range data {
			out[i] = (v - med) / scale
		}
	} else {
		for i, v := range data {
			out[i] = v - med
		}
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var s float64
	for _, v := range data {
		s += v
	}
	return s / float64(len(data))
}

// stddev is the population standard deviation.
func stddev(data []float64, m float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var ss float64
	for _, v := range data {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(data)))
}

func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	s := append([]float64(nil), data...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
