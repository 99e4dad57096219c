package classify

import (
	"github.com/rs/zerolog/log"

	"neurodetect/internal/common"
)

// Combine fuses the two classifier results. When both succeeded the ensemble
// averages their confidences and adopts the class of the more confident model
// (ties go to QDA). When one failed the other passes through unchanged, and
// when both failed the ensemble degrades to Unknown at zero confidence
// rather than erroring.
func Combine(qda, tabnet Result) EnsembleResult {
	switch {
	case qda.OK() && tabnet.OK():
		pred := tabnet.PredictedClass
		if qda.Confidence >= tabnet.Confidence {
			pred = qda.PredictedClass
		}
		return EnsembleResult{
			PredictedClass:   pred,
			Confidence:       round2((qda.Confidence + tabnet.Confidence) / 2),
			Method:           "Ensemble (QDA + TabNet)",
			QDAConfidence:    round2(qda.Confidence),
			TabNetConfidence: round2(tabnet.Confidence),
		}

	case qda.OK():
		return EnsembleResult{
			PredictedClass:   qda.PredictedClass,
			Confidence:       round2(qda.Confidence),
			Method:           "QDA Only (TabNet unavailable)",
			QDAConfidence:    round2(qda.Confidence),
			TabNetConfidence: 0.0,
		}

	case tabnet.OK():
		return EnsembleResult{
			PredictedClass:   tabnet.PredictedClass,
			Confidence:       round2(tabnet.Confidence),
			Method:           "TabNet Only (QDA unavailable)",
			QDAConfidence:    0.0,
			TabNetConfidence: round2(tabnet.Confidence),
		}

	default:
		log.Error().Msg("both models failed, returning Unknown ensemble result")
		return EnsembleResult{
			PredictedClass: common.ClassUnknown,
			Confidence:     0.0,
			Method:         "No Valid Models",
		}
	}
}
