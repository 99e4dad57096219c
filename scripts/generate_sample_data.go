package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"neurodetect/internal/common"
)

func main() {
	var (
		outPath = flag.String("out", "data/samples", "Output directory for generated recordings")
		count   = flag.Int("count", 10, "Recordings per class")
		samples = flag.Int("samples", common.NominalSamples, "Samples per recording")
		seed    = flag.Int64("seed", 42, "Random seed")
	)
	flag.Parse()

	fmt.Printf("Generating sample EEG recordings...\n")
	fmt.Printf("  Per class: %d\n", *count)
	fmt.Printf("  Samples:   %d\n", *samples)
	fmt.Printf("  Output:    %s\n", *outPath)

	rng := rand.New(rand.NewSource(*seed))

	for class, gen := range generators() {
		dir := filepath.Join(*outPath, class)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
		for i := 0; i < *count; i++ {
			data := gen(rng, *samples)
			path := filepath.Join(dir, fmt.Sprintf("rec_%03d.csv", i))
			if err := writeCSV(path, data); err != nil {
				log.Fatalf("write %s: %v", path, err)
			}
		}
		fmt.Printf("  wrote %d %s recordings\n", *count, class)
	}
}

type generator func(rng *rand.Rand, n int) []float64

func generators() map[string]generator {
	return map[string]generator{
		common.ClassNormal:            normalSignal,
		common.ClassSeizure:           seizureSignal,
		common.ClassNeurodegeneration: neuroSignal,
	}
}

// normalSignal is alpha dominant: a strong 10 Hz rhythm over weak background.
func normalSignal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	phase := rng.Float64() * 2 * math.Pi
	for i := range out {
		ti := float64(i) / common.SamplingRate
		out[i] = 40*math.Sin(2*math.Pi*10*ti+phase) +
			6*math.Sin(2*math.Pi*2*ti) +
			4*rng.NormFloat64()
	}
	return out
}

// seizureSignal carries fast beta/gamma activity with intermittent spikes
// for heavy-tailed amplitude statistics.
func seizureSignal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		ti := float64(i) / common.SamplingRate
		out[i] = 25*math.Sin(2*math.Pi*22*ti) +
			18*math.Sin(2*math.Pi*38*ti) +
			6*rng.NormFloat64()
		if rng.Float64() < 0.01 {
			out[i] += 200 * (rng.Float64() - 0.5)
		}
	}
	return out
}

// neuroSignal is slow-wave dominant: delta with some theta.
func neuroSignal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	phase := rng.Float64() * 2 * math.Pi
	for i := range out {
		ti := float64(i) / common.SamplingRate
		out[i] = 55*math.Sin(2*math.Pi*2*ti+phase) +
			15*math.Sin(2*math.Pi*5*ti) +
			3*rng.NormFloat64()
	}
	return out
}

func writeCSV(path string, data []float64) error {
	var b strings.Builder
	b.Grow(len(data) * 12)
	for _, v := range data {
		fmt.Fprintf(&b, "%.6f\n", v)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
