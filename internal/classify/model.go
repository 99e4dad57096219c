package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrModelUnavailable marks a classifier whose persisted parameters failed to
// load at startup. It produces the distinct "unavailable" result status,
// which is not counted as a failed inference.
var ErrModelUnavailable = errors.New("model parameters unavailable")

// ModelParams is the persisted model object loaded once at process start.
// The rule cascade is authoritative for inference; the loaded parameters gate
// availability, carry provenance metadata, and may override threshold
// constants for a deployment.
type ModelParams struct {
	Version    string    `json:"version"`
	TrainedAt  time.Time `json:"trained_at,omitempty"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Features   int       `json:"expected_features,omitempty"`
	Thresholds *struct {
		AlphaHigh     *float64 `json:"alpha_high,omitempty"`
		DeltaHigh     *float64 `json:"delta_high,omitempty"`
		FastPowerHigh *float64 `json:"fast_power_high,omitempty"`
		KurtosisHigh  *float64 `json:"kurtosis_high,omitempty"`
		ZCRHigh       *float64 `json:"zcr_high,omitempty"`
	} `json:"thresholds,omitempty"`
}

// LoadModelParams reads the persisted model file. A missing or unparsable
// file yields ErrModelUnavailable.
func LoadModelParams(path string) (ModelParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelParams{}, fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, path, err)
	}

	var params ModelParams
	if err := json.Unmarshal(data, &params); err != nil {
		return ModelParams{}, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, path, err)
	}

	log.Info().Str("path", path).Str("version", params.Version).Msg("model parameters loaded")
	return params, nil
}

// apply merges any per-deployment threshold overrides into the base table.
func (p ModelParams) apply(base Thresholds) Thresholds {
	if p.Thresholds == nil {
		return base
	}
	if v := p.Thresholds.AlphaHigh; v != nil {
		base.AlphaHigh = *v
	}
	if v := p.Thresholds.DeltaHigh; v != nil {
		base.DeltaHigh = *v
	}
	if v := p.Thresholds.FastPowerHigh; v != nil {
		base.FastPowerHigh = *v
	}
	if v := p.Thresholds.KurtosisHigh; v != nil {
		base.KurtosisHigh = *v
	}
	if v := p.Thresholds.ZCRHigh; v != nil {
		base.ZCRHigh = *v
	}
	return base
}
