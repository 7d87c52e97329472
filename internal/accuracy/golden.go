// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accuracy

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
)

// GoldenRecord is one hand-curated ground-truth biomarker. Category uses
// the wire string form so a golden file can be authored without touching
// the core types.
type GoldenRecord struct {
	// Name identifies the biomarker; informational only.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Category is the expected biomarker category.
	Category string `json:"category" yaml:"category"`

	// ExpectedGOTerms are the GO terms a correct extraction should find.
	ExpectedGOTerms []string `json:"expected_go_terms,omitempty" yaml:"expected_go_terms,omitempty"`

	// ValidationStudies lists known validation studies. Non-empty means
	// the biomarker should be extracted as validated.
	ValidationStudies []string `json:"validation_studies,omitempty" yaml:"validation_studies,omitempty"`
}

// GoldenFile is the on-disk golden dataset.
type GoldenFile struct {
	Records []GoldenRecord `yaml:"records"`
}

// LoadGolden reads a golden dataset from a YAML file. Records with a
// category outside the canonical set are rejected so a typo in the golden
// file cannot silently deflate category accuracy.
func LoadGolden(path string) ([]GoldenRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading golden dataset: %w", err)
	}

	var file GoldenFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing golden dataset %s: %w", path, err)
	}

	for i, rec := range file.Records {
		if _, ok := biomarker.ParseCategory(rec.Category); !ok {
			return nil, fmt.Errorf("golden record %d (%s): unknown category %q",
				i, rec.Name, rec.Category)
		}
	}

	return file.Records, nil
}

// Evaluate pairs predictions with golden records positionally (up to the
// shorter list), accumulates metrics and the confusion matrix, and returns
// both. Predictions beyond the golden list, or vice versa, are ignored.
func Evaluate(predictions []biomarker.BiomarkerEntity, golden []GoldenRecord) (*Metrics, *ConfusionMatrix) {
	metrics := &Metrics{}
	matrix := NewConfusionMatrix(nil)

	n := len(predictions)
	if len(golden) < n {
		n = len(golden)
	}

	for i := 0; i < n; i++ {
		metrics.Add(predictions[i], golden[i])
		if actual, ok := biomarker.ParseCategory(golden[i].Category); ok {
			matrix.Add(predictions[i].Category, actual)
		}
	}

	return metrics, matrix
}
