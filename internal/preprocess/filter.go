package preprocess

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Biquad is one second-order IIR section in direct form II transposed,
// normalized so a0 == 1.
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// SOS is a cascade of second-order sections.
type SOS []Biquad

// Filter runs a single forward pass over x and returns a new slice.
func (s SOS) Filter(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	for _, sec := range s {
		var z1, z2 float64
		for i, v := range y {
			out := sec.B0*v + z1
			z1 = sec.B1*v - sec.A1*out + z2
			z2 = sec.B2*v - sec.A2*out
			y[i] = out
		}
	}
	return y
}

// FiltFilt applies the cascade forward and backward for zero phase distortion.
// The signal is extended at both ends by odd reflection to suppress edge
// transients, matching the usual filtfilt convention.
func (s SOS) FiltFilt(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	padlen := 3 * (2*len(s) + 1)
	if padlen >= len(x) {
		padlen = len(x) - 1
	}

	ext := oddReflect(x, padlen)
	ext = s.Filter(ext)
	reverse(ext)
	ext = s.Filter(ext)
	reverse(ext)

	y := make([]float64, len(x))
	copy(y, ext[padlen:padlen+len(x)])
	return y
}

func oddReflect(x []float64, n int) []float64 {
	ext := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	last := len(x) - 1
	for i := 1; i <= n; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// ButterBandpass designs an order-n Butterworth band-pass filter with edges
// low..high Hz at sampling rate fs, returned as second-order sections. The
// design follows the classic analog-prototype route: prototype poles,
// low-pass to band-pass transform, bilinear transform, conjugate pairing.
func ButterBandpass(n int, low, high, fs float64) (SOS, error) {
	if n <= 0 {
		return nil, fmt.Errorf("filter order must be positive, got %d", n)
	}
	nyq := fs / 2
	if low <= 0 || high <= low || high >= nyq {
		return nil, fmt.Errorf("band edges must satisfy 0 < low < high < %.2f Hz, got [%.2f, %.2f]", nyq, low, high)
	}

	// Prewarp band edges for the bilinear transform.
	fs2 := 2 * fs
	w1 := fs2 * math.Tan(math.Pi*low/fs)
	w2 := fs2 * math.Tan(math.Pi*high/fs)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	// Butterworth prototype poles on the unit circle, left half-plane.
	proto := make([]complex128, n)
	for k := 0; k < n; k++ {
		theta := math.Pi * float64(2*k+n+1) / float64(2*n)
		proto[k] = cmplx.Exp(complex(0, theta))
	}

	// Low-pass to band-pass: each prototype pole yields two analog poles.
	poles := make([]complex128, 0, 2*n)
	for _, p := range proto {
		ps := p * complex(bw/2, 0)
		d := cmplx.Sqrt(ps*ps - complex(wo*wo, 0))
		poles = append(poles, ps+d, ps-d)
	}
	// n analog zeros at s=0, overall analog gain bw^n.

	// Bilinear transform to the z-plane.
	zpoles := make([]complex128, len(poles))
	gain := complex(math.Pow(bw, float64(n)), 0)
	for i, p := range poles {
		zpoles[i] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
		gain /= complex(fs2, 0) - p
	}
	// Analog zeros at s=0 map to z=+1 and contribute fs2^n to the gain;
	// the n excess poles add zeros at z=-1.
	gain *= complex(math.Pow(fs2, float64(n)), 0)
	k := real(gain)

	sections, err := pairConjugates(zpoles)
	if err != nil {
		return nil, err
	}

	// Each section carries one zero at z=+1 and one at z=-1: (z-1)(z+1).
	sos := make(SOS, len(sections))
	for i, sec := range sections {
		sos[i] = Biquad{B0: 1, B1: 0, B2: -1, A1: sec[0], A2: sec[1]}
	}
	sos[0].B0 *= k
	sos[0].B1 *= k
	sos[0].B2 *= k
	return sos, nil
}

// pairConjugates groups poles into conjugate (or real) pairs and returns the
// [a1, a2] denominator coefficients for each pair.
func pairConjugates(poles []complex128) ([][2]float64, error) {
	if len(poles)%2 != 0 {
		return nil, fmt.Errorf("odd pole count %d", len(poles))
	}
	const tol = 1e-9

	remaining := append([]complex128(nil), poles...)
	var pairs [][2]float64
	for len(remaining) > 0 {
		p := remaining[0]
		remaining = remaining[1:]

		// Find the closest match to conj(p); for real poles this picks
		// another (near-)real pole.
		want := cmplx.Conj(p)
		best, bestDist := -1, math.Inf(1)
		for i, q := range remaining {
			if d := cmplx.Abs(q - want); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("unpaired pole %v", p)
		}
		q := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)

		if math.Abs(imag(p)+imag(q)) > tol*(1+cmplx.Abs(p)) {
			return nil, fmt.Errorf("poles %v and %v are not a conjugate pair", p, q)
		}
		pairs = append(pairs, [2]float64{-real(p + q), real(p * q)})
	}
	return pairs, nil
}

// Notch designs a narrow band-reject biquad centered at f0 Hz with the given
// quality factor, at sampling rate fs.
func Notch(f0, q, fs float64) (SOS, error) {
	nyq := fs / 2
	if f0 <= 0 || f0 >= nyq {
		return nil, fmt.Errorf("notch frequency must be in (0, %.2f) Hz, got %.2f", nyq, f0)
	}
	if q <= 0 {
		return nil, fmt.Errorf("quality factor must be positive, got %.2f", q)
	}

	w0 := 2 * math.Pi * f0 / fs
	beta := math.Tan(w0 / (2 * q))
	gain := 1 / (1 + beta)

	return SOS{{
		B0: gain,
		B1: -2 * gain * math.Cos(w0),
		B2: gain,
		A1: -2 * gain * math.Cos(w0),
		A2: 2*gain - 1,
	}}, nil
}
