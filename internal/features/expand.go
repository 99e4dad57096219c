package features

import "math"

// Guarded-division floors. Divisors below the floor are clamped so expansion
// is total; the 0.1 floor applies where the original formulas use it.
const (
	divFloor     = 0.001
	wideDivFloor = 0.1
)

func safeDiv(a, b float64) float64 {
	return a / math.Max(b, divFloor)
}

func wideDiv(a, b float64) float64 {
	return a / math.Max(b, wideDivFloor)
}

// Expand derives the 62-value extended set from the base features. It is a
// pure deterministic function and never fails. The composite formulas are
// part of the external contract; classifiers threshold directly on them.
func Expand(set Set) ExtendedSet {
	bp := set.BandPowers
	st := set.Statistics

	ebp := ExtendedBandPowers{
		BandPowers:         bp,
		DeltaAlphaRatio:    safeDiv(bp.Delta, bp.Alpha),
		ThetaBetaRatio:     safeDiv(bp.Theta, bp.Beta),
		AlphaBetaRatio:     safeDiv(bp.Alpha, bp.Beta),
		DeltaThetaCombined: bp.Delta + bp.Theta,
		HighFreqPower:      bp.Beta + bp.Gamma,
		TotalPower:         bp.Delta + bp.Theta + bp.Alpha + bp.Beta + bp.Gamma,
		LowHighRatio:       safeDiv(bp.Delta+bp.Theta, bp.Beta+bp.Gamma),
	}

	est := ExtendedStatistics{
		Statistics:                st,
		AmplitudeRange:            st.PeakAmplitude - math.Abs(st.MeanAmplitude),
		CoefficientVariation:      safeDiv(st.StandardDeviation, math.Abs(st.MeanAmplitude)),
		SignalToNoise:             safeDiv(math.Abs(st.MeanAmplitude), st.StandardDeviation),
		SpectralSpread:            wideDiv(st.SpectralBandwidth, st.SpectralCentroid),
		SpectralSlope:             (st.SpectralRolloff - st.SpectralCentroid) / 10.0,
		SpectralFlux:              math.Abs(st.SpectralCentroid - 12.5),
		TemporalCentroid:          st.ZeroCrossingRate * 100,
		SpectralDecrease:          math.Max(0, st.SpectralRolloff-st.SpectralCentroid),
		HarmonicRatio:             safeDiv(st.MFCC1, math.Abs(st.MFCC2)),
		NoiseRatio:                safeDiv(st.Entropy, st.Energy),
		DynamicRange:              safeDiv(st.PeakAmplitude, st.RMSAmplitude),
		SpectralContrast:          st.SpectralRolloff - st.SpectralCentroid,
		RhythmicPattern:           st.MFCC3 * st.ZeroCrossingRate,
		FrequencyStability:        safeDiv(1.0, st.SpectralBandwidth),
		AmplitudeModulation:       safeDiv(st.StandardDeviation, st.RMSAmplitude),
		PhaseCoherence:            1.0 - math.Min(st.Entropy, 1.0),
		SignalComplexity:          math.Abs(st.Kurtosis) + math.Abs(st.Skewness),
		TemporalStability:         safeDiv(1.0, st.StandardDeviation),
		FrequencyConcentration:    wideDiv(st.SpectralCentroid, st.SpectralBandwidth),
		NeuralActivityIndex:       st.Energy * st.ZeroCrossingRate,
		SeizureIndicator:          math.Max(0, st.Kurtosis-3.0) * st.PeakAmplitude,
		NeurodegenerationMarker:   st.Entropy * (1.0 - math.Min(st.SpectralCentroid/25.0, 1.0)),
		BrainRhythmCoherence:      (bp.Alpha + bp.Beta) / 2.0,
		PathologicalPattern:       math.Abs(st.Skewness) + math.Max(0, math.Abs(st.Kurtosis)-3.0),
		ClinicalSeverity:          st.PeakAmplitude * st.Entropy,
		DiagnosticConfidence:      1.0 - st.Entropy/8.0,
		SignalRegularity:          safeDiv(1.0, st.SignalVariance),
		FrequencyDominance:        maxBand(bp),
		TimeDomainComplexity:      st.StandardDeviation * math.Abs(st.Kurtosis),
		FrequencyDomainComplexity: st.SpectralBandwidth * st.Entropy,
		AmplitudeAsymmetry:        math.Abs(st.Skewness) * st.PeakAmplitude,
		FrequencyAsymmetry:        math.Abs(st.SpectralCentroid - 15.0),
		NeuralSynchrony:           (1.0 - st.Entropy) * bp.Alpha,
		PathologicalScore:         math.Abs(st.Kurtosis) + math.Abs(st.Skewness) + st.Entropy,
	}

	return ExtendedSet{BandPowers: ebp, Statistics: est}
}

func maxBand(bp BandPowers) float64 {
	m := bp.Delta
	for _, v := range []float64{bp.Theta, bp.Alpha, bp.Beta, bp.Gamma} {
		if v > m {
			m = v
		}
	}
	return m
}
