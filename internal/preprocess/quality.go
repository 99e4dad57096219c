package preprocess

import "math"

// Quality thresholds for clinical EEG signals.
const (
	maxAmplitude       = 500.0 // μV ceiling
	minVariance        = 1e-6
	maxFlatPercent     = 5.0
	maxArtifactPercent = 30.0
	flatEpsilon        = 1e-6
	artifactZ          = 5.0
)

// QualityReport scores a signal on four independent checks worth 25 points
// each. It is informational only and never gates downstream stages.
type QualityReport struct {
	Overall         string   `json:"overall_quality"`
	Score           int      `json:"quality_score"`
	MaxAmplitude    float64  `json:"max_amplitude"`
	Variance        float64  `json:"variance"`
	FlatPercent     float64  `json:"flat_percent"`
	ArtifactPercent float64  `json:"artifact_percent"`
	Issues          []string `json:"issues,omitempty"`
}

// AssessQuality runs the four checks and maps the total to a label:
// >=90 Excellent, >=70 Good, >=50 Fair, otherwise Poor.
func AssessQuality(data []float64) QualityReport {
	if len(data) == 0 {
		return QualityReport{Overall: "Poor", Issues: []string{"empty signal"}}
	}

	r := QualityReport{}

	var maxAmp float64
	for _, v := range data {
		if a := math.Abs(v); a > maxAmp {
			maxAmp = a
		}
	}
	r.MaxAmplitude = maxAmp
	if maxAmp < maxAmplitude {
		r.Score += 25
	} else {
		r.Issues = append(r.Issues, "high amplitude")
	}

	m := mean(data)
	sd := stddev(data, m)
	r.Variance = sd * sd
	if r.Variance > minVariance {
		r.Score += 25
	} else {
		r.Issues = append(r.Issues, "low variance")
	}

	var flat int
	for i := 1; i < len(data); i++ {
		if math.Abs(data[i]-data[i-1]) < flatEpsilon {
			flat++
		}
	}
	r.FlatPercent = float64(flat) / float64(len(data)) * 100
	if r.FlatPercent < maxFlatPercent {
		r.Score += 25
	} else {
		r.Issues = append(r.Issues, "flat segments")
	}

	var artifacts int
	if sd > 0 {
		for _, v := range data {
			if math.Abs(v-m)/sd > artifactZ {
				artifacts++
			}
		}
	}
	r.ArtifactPercent = float64(artifacts) / float64(len(data)) * 100
	if r.ArtifactPercent < maxArtifactPercent {
		r.Score += 25
	} else {
		r.Issues = append(r.Issues, "artifacts")
	}

	switch {
	case r.Score >= 90:
		r.Overall = "Excellent"
	case r.Score >= 70:
		r.Overall = "Good"
	case r.Score >= 50:
		r.Overall = "Fair"
	default:
		r.Overall = "Poor"
	}
	return r
}
