package classify

import (
	"math"

	"github.com/rs/zerolog/log"

	"neurodetect/internal/common"
	"neurodetect/internal/features"
)

// MetricsSink is the narrow metrics surface the classifiers need.
type MetricsSink interface {
	PredictionsInc(model, class string)
	FallbacksInc(model string)
}

// Classifier is one rule-cascade model. Both production models share the
// cascade and differ only in their Thresholds table.
type Classifier struct {
	name       string
	thresholds Thresholds
	available  bool
	metrics    MetricsSink
}

// NewClassifier builds a classifier from its decision table. params carries
// the persisted model state; loadErr != nil marks the model unavailable so
// every prediction returns the distinct unavailable result.
func NewClassifier(name string, base Thresholds, params ModelParams, loadErr error, metrics MetricsSink) *Classifier {
	c := &Classifier{
		name:       name,
		thresholds: base,
		available:  loadErr == nil,
		metrics:    metrics,
	}
	if loadErr == nil {
		c.thresholds = params.apply(base)
	} else {
		log.Warn().Err(loadErr).Str("model", name).Msg("model not loaded, predictions will be unavailable")
	}
	return c
}

// Available reports whether the persisted model loaded at startup.
func (c *Classifier) Available() bool { return c.available }

// Name returns the model name ("QDA" or "TabNet").
func (c *Classifier) Name() string { return c.name }

// Predict classifies an extended feature set. It never returns an error:
// unavailable models yield the unavailable result, and any internal panic is
// converted to the model's deterministic fallback.
func (c *Classifier) Predict(ext features.ExtendedSet) (res Result) {
	if !c.available {
		return c.unavailableResult()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("model", c.name).Msg("classification panicked, using fallback")
			if c.metrics != nil {
				c.metrics.FallbacksInc(c.name)
			}
			res = c.fallbackResult()
		}
	}()

	res = c.cascade(ext)
	if c.metrics != nil {
		c.metrics.PredictionsInc(c.name, res.PredictedClass)
	}
	return res
}

// cascade is the tuned first-match decision logic. Rules run in fixed
// priority order: alpha dominance, slow-wave dominance, spike activity, then
// a relative-strength score fallthrough.
func (c *Classifier) cascade(ext features.ExtendedSet) Result {
	t := c.thresholds

	delta := ext.BandPowers.Delta
	theta := ext.BandPowers.Theta
	alpha := ext.BandPowers.Alpha
	beta := ext.BandPowers.Beta
	gamma := ext.BandPowers.Gamma
	kurt := ext.Statistics.Kurtosis
	zcr := ext.Statistics.ZeroCrossingRate

	var class string
	var confidence float64
	var probs [3]float64

	switch {
	case alpha > t.AlphaHigh:
		class = common.ClassNormal
		confidence = math.Min(alpha*t.NormalConfScale, t.NormalConfCap)
		probs = [3]float64{confidence / 100, (100 - confidence) / 200, (100 - confidence) / 200}

	case delta > t.DeltaHigh || (delta+theta > t.SlowWaveMid && alpha < t.AlphaLow):
		class = common.ClassNeurodegeneration
		confidence = math.Min((delta+theta)*t.NeuroConfScale, t.NeuroConfCap)
		probs = [3]float64{(100 - confidence) / 200, (100 - confidence) / 200, confidence / 100}

	case beta+gamma > t.FastPowerHigh || math.Abs(kurt) > t.KurtosisHigh || zcr > t.ZCRHigh:
		class = common.ClassSeizure
		spike := math.Min((beta+gamma)*t.SeizurePowerScale+math.Abs(kurt)*t.SeizureKurtScale, t.SeizureConfCap)
		confidence = math.Max(spike, t.SeizureConfFloor)
		probs = [3]float64{(100 - confidence) / 200, confidence / 100, (100 - confidence) / 200}

	default:
		normalScore := alpha * 100
		seizureScore := (beta+gamma)*100 + math.Abs(kurt)*t.ScoreKurtWeight
		neuroScore := (delta + theta) * t.ScoreNeuroWeight

		total := math.Max(normalScore+seizureScore+neuroScore, 0.01)
		probs = [3]float64{normalScore / total, seizureScore / total, neuroScore / total}

		idx := 0
		for i := 1; i < 3; i++ {
			if probs[i] > probs[idx] {
				idx = i
			}
		}
		class = common.ClassNames[idx]
		confidence = probs[idx] * 100
	}

	log.Debug().
		Str("model", c.name).
		Str("class", class).
		Float64("confidence", confidence).
		Float64("alpha", alpha).
		Float64("delta", delta).
		Float64("beta_gamma", beta+gamma).
		Msg("classified")

	return Result{
		PredictedClass: class,
		Confidence:     round2(confidence),
		Probabilities:  roundProbs(probs),
		Model:          c.name + " Feature-Based (Tuned)",
		Method:         "Threshold-based classification",
		Status:         StatusSuccess,
	}
}

func (c *Classifier) fallbackResult() Result {
	return Result{
		PredictedClass: common.ClassNormal,
		Confidence:     c.thresholds.FallbackConfidence,
		Probabilities:  c.thresholds.FallbackProbabilities,
		Model:          c.name + " Fallback",
		Method:         "Default",
		Status:         StatusSuccess,
	}
}

func (c *Classifier) unavailableResult() Result {
	return Result{
		PredictedClass: common.ClassUnknown,
		Confidence:     0.0,
		Probabilities:  [3]float64{0.33, 0.33, 0.34},
		Model:          c.name + " (Not Loaded)",
		Method:         "Unavailable",
		Status:         StatusUnavailable,
	}
}

// ErrorResult is the result substituted when the surrounding pipeline fails
// before the classifier could run.
func ErrorResult(model string, err error) Result {
	return Result{
		PredictedClass: "Error",
		Confidence:     0.0,
		Probabilities:  [3]float64{0.33, 0.33, 0.34},
		Model:          model,
		Method:         "Error",
		Status:         StatusError,
		Error:          err.Error(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundProbs(p [3]float64) [3]float64 {
	for i := range p {
		p[i] = math.Round(p[i]*10000) / 10000
	}
	return p
}
