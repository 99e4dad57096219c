package preprocess

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurodetect/internal/common"
)

// gainAt evaluates |H(e^jw)| of the cascade at freq Hz.
func gainAt(s SOS, freq, fs float64) float64 {
	w := 2 * math.Pi * freq / fs
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	h := complex(1, 0)
	for _, sec := range s {
		num := complex(sec.B0, 0) + complex(sec.B1, 0)*z1 + complex(sec.B2, 0)*z2
		den := complex(1, 0) + complex(sec.A1, 0)*z1 + complex(sec.A2, 0)*z2
		h *= num / den
	}
	return cmplx.Abs(h)
}

func TestButterBandpass_FrequencyResponse(t *testing.T) {
	sos, err := ButterBandpass(4, 0.5, 50, common.SamplingRate)
	require.NoError(t, err)
	assert.Len(t, sos, 4)

	// DC and near-Nyquist are rejected, mid-band passes at unit gain.
	assert.Less(t, gainAt(sos, 0.01, common.SamplingRate), 0.05)
	assert.Less(t, gainAt(sos, 80, common.SamplingRate), 0.05)
	assert.InDelta(t, 1.0, gainAt(sos, 10, common.SamplingRate), 0.05)
	assert.InDelta(t, 1.0, gainAt(sos, 25, common.SamplingRate), 0.05)
}

func TestButterBandpass_InvalidEdges(t *testing.T) {
	cases := []struct {
		name      string
		low, high float64
	}{
		{"zero low", 0, 50},
		{"inverted", 50, 0.5},
		{"above nyquist", 0.5, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ButterBandpass(4, tc.low, tc.high, common.SamplingRate)
			assert.Error(t, err)
		})
	}
}

func TestNotch_RejectsCenterOnly(t *testing.T) {
	sos, err := Notch(50, 30, common.SamplingRate)
	require.NoError(t, err)

	assert.Less(t, gainAt(sos, 50, common.SamplingRate), 0.01)
	assert.InDelta(t, 1.0, gainAt(sos, 10, common.SamplingRate), 0.05)
	assert.InDelta(t, 1.0, gainAt(sos, 40, common.SamplingRate), 0.2)
}

func TestFiltFilt_RemovesOutOfBandComponent(t *testing.T) {
	fs := common.SamplingRate
	n := 4096
	x := make([]float64, n)
	for i := range x {
		ti := float64(i) / fs
		// 10 Hz in-band tone plus a large DC offset
		x[i] = math.Sin(2*math.Pi*10*ti) + 5.0
	}

	sos, err := ButterBandpass(4, 0.5, 50, fs)
	require.NoError(t, err)
	y := sos.FiltFilt(x)
	require.Len(t, y, n)

	// Offset is gone, tone amplitude survives (check away from edges).
	var sum, peak float64
	for i := n / 4; i < 3*n/4; i++ {
		sum += y[i]
		if a := math.Abs(y[i]); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 0, sum/float64(n/2), 0.05)
	assert.InDelta(t, 1.0, peak, 0.1)
}

func TestFiltFilt_EmptyAndShortInputs(t *testing.T) {
	sos, err := Notch(50, 30, common.SamplingRate)
	require.NoError(t, err)

	assert.Nil(t, sos.FiltFilt(nil))
	assert.Len(t, sos.FiltFilt([]float64{1, 2, 3}), 3)
}
