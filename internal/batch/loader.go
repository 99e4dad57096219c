// Package batch evaluates the analysis pipeline over a labeled dataset
// directory and reports per-model and ensemble accuracy.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"neurodetect/internal/common"
)

// LabeledFile is one dataset recording with its expected class.
type LabeledFile struct {
	Path  string
	Name  string
	Label string
}

// LoadDataset walks root and collects recordings with their labels. The label
// comes from the parent directory name when it is a known class, otherwise
// from the filename prefix (e.g. "seizure_001.csv"). Unlabeled files are
// skipped with a warning.
func LoadDataset(root string) ([]LabeledFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", root)
	}

	var files []LabeledFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDataFile(d.Name()) {
			return nil
		}

		label := labelFor(path, d.Name())
		if label == "" {
			log.Warn().Str("file", path).Msg("no class label, skipping")
			return nil
		}

		files = append(files, LabeledFile{Path: path, Name: d.Name(), Label: label})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk dataset: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	log.Info().Int("files", len(files)).Str("root", root).Msg("dataset loaded")
	return files, nil
}

func isDataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

func labelFor(path, name string) string {
	if label := matchClass(filepath.Base(filepath.Dir(path))); label != "" {
		return label
	}
	return matchClass(name)
}

// matchClass maps a directory or file name to a canonical class by prefix.
func matchClass(s string) string {
	s = strings.ToLower(s)
	for _, class := range common.ClassNames {
		if strings.HasPrefix(s, class) {
			return class
		}
	}
	return ""
}
