// Package features computes the EEG feature battery: relative band powers
// from the FFT spectrum, statistical/spectral/temporal descriptors, and the
// deterministic expansion to the 62-value vector both classifiers consume.
package features

// BandPowers holds the relative spectral power of the five canonical EEG
// bands. Values are in [0,1] and sum to about 1 for non-degenerate signals.
type BandPowers struct {
	Delta float64 `json:"Delta_Waves"` // 0.5-4 Hz
	Theta float64 `json:"Theta_Waves"` // 4-8 Hz
	Alpha float64 `json:"Alpha_Waves"` // 8-13 Hz
	Beta  float64 `json:"Beta_Waves"`  // 13-30 Hz
	Gamma float64 `json:"Gamma_Waves"` // 30-50 Hz
}

// Statistics is the 16-value base descriptor group.
type Statistics struct {
	MeanAmplitude     float64 `json:"mean_amplitude"`
	SignalVariance    float64 `json:"signal_variance"`
	StandardDeviation float64 `json:"standard_deviation"`
	Kurtosis          float64 `json:"kurtosis"`
	Skewness          float64 `json:"skewness"`
	PeakAmplitude     float64 `json:"peak_amplitude"`
	RMSAmplitude      float64 `json:"rms_amplitude"`
	SpectralCentroid  float64 `json:"spectral_centroid"`
	SpectralBandwidth float64 `json:"spectral_bandwidth"`
	SpectralRolloff   float64 `json:"spectral_rolloff"`
	ZeroCrossingRate  float64 `json:"zero_crossing_rate"`
	MFCC1             float64 `json:"mfcc_1"`
	MFCC2             float64 `json:"mfcc_2"`
	MFCC3             float64 `json:"mfcc_3"`
	Energy            float64 `json:"energy"`
	Entropy           float64 `json:"entropy"`
}

// Temporal carries coarse time-domain summaries. It is informational;
// classifiers do not depend on it.
type Temporal struct {
	ZeroCrossings     int     `json:"zero_crossings"`
	Energy            float64 `json:"energy"`
	DominantFrequency float64 `json:"dominant_frequency"`
}

// Set is the base feature vector: 5 band powers + 16 statistics.
type Set struct {
	BandPowers BandPowers `json:"band_powers"`
	Statistics Statistics `json:"statistics"`
	Temporal   *Temporal  `json:"temporal,omitempty"`
}

// ExtendedBandPowers is the 12-value band group: the 5 base powers plus 7
// derived ratios and aggregates.
type ExtendedBandPowers struct {
	BandPowers
	DeltaAlphaRatio    float64 `json:"Delta_Alpha_Ratio"`
	ThetaBetaRatio     float64 `json:"Theta_Beta_Ratio"`
	AlphaBetaRatio     float64 `json:"Alpha_Beta_Ratio"`
	DeltaThetaCombined float64 `json:"Delta_Theta_Combined"`
	HighFreqPower      float64 `json:"High_Freq_Power"`
	TotalPower         float64 `json:"Total_Power"`
	LowHighRatio       float64 `json:"Low_High_Ratio"`
}

// ExtendedStatistics is the 50-value statistic group: the 16 base values
// plus 34 composite indices. The composites are hand-designed formulas, not
// learned weights; classifiers threshold directly on them.
type ExtendedStatistics struct {
	Statistics
	AmplitudeRange            float64 `json:"amplitude_range"`
	CoefficientVariation      float64 `json:"coefficient_variation"`
	SignalToNoise             float64 `json:"signal_to_noise"`
	SpectralSpread            float64 `json:"spectral_spread"`
	SpectralSlope             float64 `json:"spectral_slope"`
	SpectralFlux              float64 `json:"spectral_flux"`
	TemporalCentroid          float64 `json:"temporal_centroid"`
	SpectralDecrease          float64 `json:"spectral_decrease"`
	HarmonicRatio             float64 `json:"harmonic_ratio"`
	NoiseRatio                float64 `json:"noise_ratio"`
	DynamicRange              float64 `json:"dynamic_range"`
	SpectralContrast          float64 `json:"spectral_contrast"`
	RhythmicPattern           float64 `json:"rhythmic_pattern"`
	FrequencyStability        float64 `json:"frequency_stability"`
	AmplitudeModulation       float64 `json:"amplitude_modulation"`
	PhaseCoherence            float64 `json:"phase_coherence"`
	SignalComplexity          float64 `json:"signal_complexity"`
	TemporalStability         float64 `json:"temporal_stability"`
	FrequencyConcentration    float64 `json:"frequency_concentration"`
	NeuralActivityIndex       float64 `json:"neural_activity_index"`
	SeizureIndicator          float64 `json:"seizure_indicator"`
	NeurodegenerationMarker   float64 `json:"neurodegeneration_marker"`
	BrainRhythmCoherence      float64 `json:"brain_rhythm_coherence"`
	PathologicalPattern       float64 `json:"pathological_pattern"`
	ClinicalSeverity          float64 `json:"clinical_severity"`
	DiagnosticConfidence      float64 `json:"diagnostic_confidence"`
	SignalRegularity          float64 `json:"signal_regularity"`
	FrequencyDominance        float64 `json:"frequency_dominance"`
	TimeDomainComplexity      float64 `json:"time_domain_complexity"`
	FrequencyDomainComplexity float64 `json:"frequency_domain_complexity"`
	AmplitudeAsymmetry        float64 `json:"amplitude_asymmetry"`
	FrequencyAsymmetry        float64 `json:"frequency_asymmetry"`
	NeuralSynchrony           float64 `json:"neural_synchrony"`
	PathologicalScore         float64 `json:"pathological_score"`
}

// ExtendedSet is the fixed-arity 62-value input both classifiers expect:
// 12 band values + 50 statistics.
type ExtendedSet struct {
	BandPowers ExtendedBandPowers `json:"band_powers"`
	Statistics ExtendedStatistics `json:"statistics"`
}

// DefaultBandPowers is the uniform distribution substituted when band power
// extraction fails, avoiding spurious certainty downstream.
func DefaultBandPowers() BandPowers {
	return BandPowers{Delta: 0.2, Theta: 0.2, Alpha: 0.2, Beta: 0.2, Gamma: 0.2}
}

// DefaultStatistics is the safe constant set substituted when statistical
// extraction fails.
func DefaultStatistics() Statistics {
	return Statistics{
		SignalVariance:    1.0,
		StandardDeviation: 1.0,
		PeakAmplitude:     1.0,
		RMSAmplitude:      0.5,
		SpectralCentroid:  10.0,
		SpectralBandwidth: 5.0,
		SpectralRolloff:   20.0,
		ZeroCrossingRate:  0.05,
		Energy:            1.0,
		Entropy:           0.5,
	}
}
