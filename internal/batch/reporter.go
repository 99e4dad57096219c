package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"neurodetect/internal/common"
)

// Reporter writes evaluation results in several formats.
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes the summary, per-file log, and JSON report.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}
	if err := r.generateOutcomeLog(); err != nil {
		return err
	}
	if err := r.generateJSONReport(); err != nil {
		return err
	}

	log.Info().Str("path", r.outputPath).Msg("reports written")
	return nil
}

func (r *Reporter) generateSummary() error {
	analyzed := r.results.Total - r.results.Failed

	var b strings.Builder
	b.WriteString("Evaluation Summary\n")
	b.WriteString("==================\n\n")
	fmt.Fprintf(&b, "Files:            %d\n", r.results.Total)
	fmt.Fprintf(&b, "Analyzed:         %d\n", analyzed)
	fmt.Fprintf(&b, "Failed:           %d\n", r.results.Failed)
	fmt.Fprintf(&b, "Elapsed:          %s\n\n", r.results.Elapsed)

	if analyzed > 0 {
		fmt.Fprintf(&b, "QDA accuracy:      %.2f%%\n", pct(r.results.Correct.QDA, analyzed))
		fmt.Fprintf(&b, "TabNet accuracy:   %.2f%%\n", pct(r.results.Correct.TabNet, analyzed))
		fmt.Fprintf(&b, "Ensemble accuracy: %.2f%%\n\n", pct(r.results.Correct.Ensemble, analyzed))
	}

	b.WriteString("Confusion matrix (rows actual, columns predicted):\n")
	fmt.Fprintf(&b, "%-18s", "")
	for _, name := range common.ClassNames {
		fmt.Fprintf(&b, "%-18s", name)
	}
	b.WriteString("\n")
	for i, name := range common.ClassNames {
		fmt.Fprintf(&b, "%-18s", name)
		for j := range common.ClassNames {
			fmt.Fprintf(&b, "%-18d", r.results.Confusion[i][j])
		}
		b.WriteString("\n")
	}

	return os.WriteFile(filepath.Join(r.outputPath, "summary.txt"), []byte(b.String()), 0o644)
}

func (r *Reporter) generateOutcomeLog() error {
	f, err := os.Create(filepath.Join(r.outputPath, "outcomes.csv"))
	if err != nil {
		return fmt.Errorf("create outcome log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"file", "label", "qda", "tabnet", "ensemble", "confidence", "error"}); err != nil {
		return err
	}
	for _, o := range r.results.Outcomes {
		row := []string{
			o.File, o.Label, o.QDA, o.TabNet, o.Ensemble,
			strconv.FormatFloat(o.Confidence, 'f', 2, 64), o.Err,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) generateJSONReport() error {
	data, err := json.MarshalIndent(r.results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(filepath.Join(r.outputPath, "results.json"), data, 0o644)
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
