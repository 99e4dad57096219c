// Package signal loads raw EEG recordings from delimited text files.
//
// Source files are CSV or whitespace-separated text holding one recording as a
// single row or column of samples, optionally preceded by a header row or an
// index column. Both are detected and stripped.
package signal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"neurodetect/internal/common"
)

// ErrEmptySignal is returned when a file yields no numeric samples after both
// parsing strategies.
var ErrEmptySignal = errors.New("no valid numeric data found in file")

// Raw is an immutable one-dimensional EEG sample sequence.
type Raw struct {
	Samples      []float64
	SamplingRate float64
}

// Duration returns the nominal recording length in seconds.
func (r Raw) Duration() float64 {
	if r.SamplingRate <= 0 {
		return 0
	}
	return float64(len(r.Samples)) / r.SamplingRate
}

// Load reads a recording from path. It first attempts a tabular parse that
// strips header rows and non-numeric columns; if that fails it falls back to
// token-by-token scanning. Returns ErrEmptySignal (wrapped) when neither
// strategy yields samples.
func Load(path string) (Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return Raw{}, fmt.Errorf("open signal file %s: %w", path, err)
	}
	defer f.Close()

	samples, err := Parse(f)
	if err != nil {
		return Raw{}, fmt.Errorf("load signal from %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("samples", len(samples)).Msg("signal loaded")
	return Raw{Samples: samples, SamplingRate: common.SamplingRate}, nil
}

// Parse reads delimited numeric data from r and flattens it to one dimension.
func Parse(r io.Reader) ([]float64, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	if samples, err := parseTabular(lines); err == nil {
		return samples, nil
	} else {
		log.Warn().Err(err).Msg("tabular parse failed, falling back to token scan")
	}

	samples := parseTokens(lines)
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}
	return samples, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read signal data: %w", err)
	}
	return lines, nil
}

// parseTabular treats the input as a rectangular table. A leading row whose
// fields are mostly non-numeric is taken as a header; columns that never parse
// as numbers (index/label columns) are discarded before flattening row-major.
func parseTabular(lines []string) ([]float64, error) {
	if len(lines) == 0 {
		return nil, ErrEmptySignal
	}

	rows := make([][]string, 0, len(lines))
	width := -1
	for _, line := range lines {
		fields := splitFields(line)
		if width == -1 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, fmt.Errorf("ragged table: row width %d != %d", len(fields), width)
		}
		rows = append(rows, fields)
	}

	if isHeaderRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptySignal
	}

	numericCol := make([]bool, width)
	for c := 0; c < width; c++ {
		numericCol[c] = true
		for _, row := range rows {
			if row[c] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[c], 64); err != nil {
				numericCol[c] = false
				break
			}
		}
	}

	var samples []float64
	for _, row := range rows {
		for c, field := range row {
			if !numericCol[c] || field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			samples = append(samples, v)
		}
	}
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}
	return samples, nil
}

// parseTokens is the lenient fallback: comma/whitespace tokens that contain
// alphabetic characters are dropped, everything parseable is kept.
func parseTokens(lines []string) []float64 {
	var samples []float64
	for _, line := range lines {
		for _, tok := range splitFields(line) {
			if tok == "" || containsAlpha(tok) {
				continue
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			samples = append(samples, v)
		}
	}
	return samples
}

func splitFields(line string) []string {
	var fields []string
	if strings.Contains(line, ",") {
		fields = strings.Split(line, ",")
	} else {
		fields = strings.Fields(line)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func isHeaderRow(fields []string) bool {
	for _, f := range fields {
		if f != "" && containsAlpha(f) {
			return true
		}
	}
	return false
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			// exponent notation like 1e5 must stay numeric
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				return false
			}
			return true
		}
	}
	return false
}
