// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accuracy

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
)

// ConfusionMatrix tracks predicted-vs-actual category counts over a fixed,
// ordered category set. Rows are actual categories, columns predicted.
type ConfusionMatrix struct {
	categories []biomarker.Category
	counts     map[biomarker.Category]map[biomarker.Category]int
}

// NewConfusionMatrix builds an empty matrix over categories. A nil slice
// uses the full canonical category set.
func NewConfusionMatrix(categories []biomarker.Category) *ConfusionMatrix {
	if categories == nil {
		categories = biomarker.Categories()
	}
	counts := make(map[biomarker.Category]map[biomarker.Category]int, len(categories))
	for _, actual := range categories {
		row := make(map[biomarker.Category]int, len(categories))
		for _, predicted := range categories {
			row[predicted] = 0
		}
		counts[actual] = row
	}
	return &ConfusionMatrix{categories: categories, counts: counts}
}

// Add records one prediction against the actual category.
func (cm *ConfusionMatrix) Add(predicted, actual biomarker.Category) {
	cm.counts[actual][predicted]++
}

// Count returns the cell for (predicted, actual).
func (cm *ConfusionMatrix) Count(predicted, actual biomarker.Category) int {
	return cm.counts[actual][predicted]
}

// CategoryMetrics holds derived per-category classification figures.
type CategoryMetrics struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`

	// Support is the number of actual occurrences of the category.
	Support int `json:"support" yaml:"support"`
}

// PerCategoryMetrics derives precision, recall, F1, and support for every
// category. True positives sit on the diagonal; false positives are the
// column sum minus the diagonal, false negatives the row sum minus the
// diagonal. Zero denominators yield 0.0.
func (cm *ConfusionMatrix) PerCategoryMetrics() map[biomarker.Category]CategoryMetrics {
	metrics := make(map[biomarker.Category]CategoryMetrics, len(cm.categories))

	for _, cat := range cm.categories {
		tp := cm.counts[cat][cat]

		fp := 0
		fn := 0
		support := 0
		for _, other := range cm.categories {
			support += cm.counts[cat][other]
			if other == cat {
				continue
			}
			fp += cm.counts[other][cat]
			fn += cm.counts[cat][other]
		}

		precision := 0.0
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		recall := 0.0
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}

		metrics[cat] = CategoryMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1(precision, recall),
			Support:   support,
		}
	}

	return metrics
}

// Print writes the matrix as a table to w. Rows are actual categories,
// columns predicted, in canonical order.
func (cm *ConfusionMatrix) Print(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nCONFUSION MATRIX\n%s\n", rule, rule)
	fmt.Fprintln(w, "\nRows = Actual, Columns = Predicted")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-12s", "Actual")
	for _, cat := range cm.categories {
		fmt.Fprintf(w, "%-11s", clip(string(cat), 10))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 12+11*len(cm.categories)))

	for _, actual := range cm.categories {
		fmt.Fprintf(w, "%-12s", clip(string(actual), 10))
		for _, predicted := range cm.categories {
			fmt.Fprintf(w, "%-11d", cm.counts[actual][predicted])
		}
		fmt.Fprintln(w)
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
