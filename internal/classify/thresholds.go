package classify

// Thresholds is the per-model decision table. The two production models share
// one rule cascade and differ only in these constants; they are part of the
// external contract and must not drift.
type Thresholds struct {
	// Rule 1: alpha dominance -> normal.
	AlphaHigh       float64
	NormalConfScale float64
	NormalConfCap   float64

	// Rule 2: slow-wave dominance -> neurodegeneration.
	DeltaHigh      float64
	SlowWaveMid    float64 // delta+theta threshold
	AlphaLow       float64
	NeuroConfScale float64
	NeuroConfCap   float64

	// Rule 3: fast activity / spikes -> seizure.
	FastPowerHigh     float64 // beta+gamma threshold
	KurtosisHigh      float64
	ZCRHigh           float64
	SeizurePowerScale float64
	SeizureKurtScale  float64
	SeizureConfCap    float64
	SeizureConfFloor  float64

	// Rule 4 fallthrough score weights (normal weight is fixed at 100).
	ScoreKurtWeight  float64
	ScoreNeuroWeight float64

	// Deterministic result substituted when classification panics.
	FallbackConfidence    float64
	FallbackProbabilities [3]float64
}

// QDAThresholds is the decision table of the QDA model.
func QDAThresholds() Thresholds {
	return Thresholds{
		AlphaHigh:       0.50,
		NormalConfScale: 150,
		NormalConfCap:   95.0,

		DeltaHigh:      0.60,
		SlowWaveMid:    0.50,
		AlphaLow:       0.20,
		NeuroConfScale: 120,
		NeuroConfCap:   95.0,

		FastPowerHigh:     0.15,
		KurtosisHigh:      2.5,
		ZCRHigh:           0.12,
		SeizurePowerScale: 300,
		SeizureKurtScale:  10,
		SeizureConfCap:    95.0,
		SeizureConfFloor:  70.0,

		ScoreKurtWeight:  10,
		ScoreNeuroWeight: 80,

		FallbackConfidence:    60.0,
		FallbackProbabilities: [3]float64{0.60, 0.20, 0.20},
	}
}

// TabNetThresholds is the decision table of the TabNet model: the same
// cascade with slightly looser entry thresholds and a lower confidence cap.
func TabNetThresholds() Thresholds {
	return Thresholds{
		AlphaHigh:       0.48,
		NormalConfScale: 145,
		NormalConfCap:   92.0,

		DeltaHigh:      0.58,
		SlowWaveMid:    0.48,
		AlphaLow:       0.22,
		NeuroConfScale: 115,
		NeuroConfCap:   92.0,

		FastPowerHigh:     0.14,
		KurtosisHigh:      2.3,
		ZCRHigh:           0.11,
		SeizurePowerScale: 280,
		SeizureKurtScale:  12,
		SeizureConfCap:    92.0,
		SeizureConfFloor:  68.0,

		ScoreKurtWeight:  12,
		ScoreNeuroWeight: 75,

		FallbackConfidence:    65.0,
		FallbackProbabilities: [3]float64{0.65, 0.18, 0.17},
	}
}
