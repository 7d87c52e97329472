// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package accuracy scores extracted biomarker entities against a golden
// reference dataset: category accuracy, ontology precision/recall/F1,
// validation-detection accuracy, and confidence correlation, plus a
// per-category confusion matrix.
package accuracy

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
)

// Metrics accumulates prediction/ground-truth pairs and computes accuracy
// figures over them. Each instance owns its state exclusively; independent
// evaluations can run in parallel.
type Metrics struct {
	predictions []biomarker.BiomarkerEntity
	truths      []GoldenRecord
}

// Add records one prediction paired with its golden record.
func (m *Metrics) Add(predicted biomarker.BiomarkerEntity, truth GoldenRecord) {
	m.predictions = append(m.predictions, predicted)
	m.truths = append(m.truths, truth)
}

// Len returns the number of recorded pairs.
func (m *Metrics) Len() int { return len(m.predictions) }

// CategoryAccuracy is the fraction of predictions whose category matches
// the golden category. 0.0 with no predictions.
func (m *Metrics) CategoryAccuracy() float64 {
	if len(m.predictions) == 0 {
		return 0.0
	}
	correct := 0
	for i, pred := range m.predictions {
		if string(pred.Category) == m.truths[i].Category {
			correct++
		}
	}
	return float64(correct) / float64(len(m.predictions))
}

// OntologyPrecision is the mean per-pair precision of predicted GO terms
// against expected GO terms. A pair with no predicted terms contributes
// 0.0 to the mean rather than being excluded. 0.0 with no predictions.
func (m *Metrics) OntologyPrecision() float64 {
	if len(m.predictions) == 0 {
		return 0.0
	}
	sum := 0.0
	for i, pred := range m.predictions {
		predicted := toSet(pred.ControlledTerms.GOTerms)
		if len(predicted) == 0 {
			continue // contributes 0.0
		}
		expected := toSet(m.truths[i].ExpectedGOTerms)
		sum += float64(intersectionSize(predicted, expected)) / float64(len(predicted))
	}
	return sum / float64(len(m.predictions))
}

// OntologyRecall is the mean per-pair recall of predicted GO terms against
// expected GO terms. Pairs with no expected terms are excluded from the
// mean: recall is undefined with nothing to recall. 0.0 when no pair has
// expected terms.
func (m *Metrics) OntologyRecall() float64 {
	sum := 0.0
	included := 0
	for i, pred := range m.predictions {
		expected := toSet(m.truths[i].ExpectedGOTerms)
		if len(expected) == 0 {
			continue
		}
		included++
		predicted := toSet(pred.ControlledTerms.GOTerms)
		sum += float64(intersectionSize(predicted, expected)) / float64(len(expected))
	}
	if included == 0 {
		return 0.0
	}
	return sum / float64(included)
}

// OntologyF1 is the harmonic mean of the aggregate precision and recall.
// 0.0 when both are 0.
func (m *Metrics) OntologyF1() float64 {
	return f1(m.OntologyPrecision(), m.OntologyRecall())
}

// ValidationAccuracy is the fraction of pairs where the predicted
// validation flag agrees with the golden record having validation studies.
func (m *Metrics) ValidationAccuracy() float64 {
	if len(m.predictions) == 0 {
		return 0.0
	}
	correct := 0
	for i, pred := range m.predictions {
		if pred.IsValidated() == (len(m.truths[i].ValidationStudies) > 0) {
			correct++
		}
	}
	return float64(correct) / float64(len(m.predictions))
}

// ConfidenceCorrelation is the Pearson correlation between extraction
// confidence and the derived validation score across all predictions.
// Fewer than 2 predictions, or zero variance in either series, yields the
// neutral 0.0 rather than an error.
func (m *Metrics) ConfidenceCorrelation() float64 {
	if len(m.predictions) < 2 {
		return 0.0
	}

	confidences := make([]float64, len(m.predictions))
	scores := make([]float64, len(m.predictions))
	for i, pred := range m.predictions {
		confidences[i] = pred.Confidence
		scores[i] = float64(pred.ValidationScore())
	}

	return pearson(confidences, scores)
}

// Summary holds every accuracy figure for one evaluation run.
type Summary struct {
	CategoryAccuracy      float64 `json:"category_accuracy" yaml:"category_accuracy"`
	OntologyPrecision     float64 `json:"ontology_precision" yaml:"ontology_precision"`
	OntologyRecall        float64 `json:"ontology_recall" yaml:"ontology_recall"`
	OntologyF1            float64 `json:"ontology_f1" yaml:"ontology_f1"`
	ValidationAccuracy    float64 `json:"validation_accuracy" yaml:"validation_accuracy"`
	ConfidenceCorrelation float64 `json:"confidence_correlation" yaml:"confidence_correlation"`
	TotalPredictions      int     `json:"total_predictions" yaml:"total_predictions"`
}

// Summarize computes all figures at once.
func (m *Metrics) Summarize() Summary {
	return Summary{
		CategoryAccuracy:      m.CategoryAccuracy(),
		OntologyPrecision:     m.OntologyPrecision(),
		OntologyRecall:        m.OntologyRecall(),
		OntologyF1:            m.OntologyF1(),
		ValidationAccuracy:    m.ValidationAccuracy(),
		ConfidenceCorrelation: m.ConfidenceCorrelation(),
		TotalPredictions:      len(m.predictions),
	}
}

// Overall-score weights and grade thresholds. Report-only figures.
const (
	weightCategory   = 0.3
	weightOntologyF1 = 0.4
	weightValidation = 0.3
)

// OverallScore is the weighted combination of category accuracy, ontology
// F1, and validation accuracy.
func (s Summary) OverallScore() float64 {
	return weightCategory*s.CategoryAccuracy +
		weightOntologyF1*s.OntologyF1 +
		weightValidation*s.ValidationAccuracy
}

// Grade maps the overall score to a letter-style grade.
func (s Summary) Grade() string {
	switch score := s.OverallScore(); {
	case score >= 0.85:
		return "EXCELLENT"
	case score >= 0.70:
		return "GOOD"
	case score >= 0.50:
		return "FAIR"
	default:
		return "NEEDS IMPROVEMENT"
	}
}

// Report writes a human-readable metrics report to w. Advisory format;
// nothing parses it.
func (s Summary) Report(w io.Writer) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "ACCURACY METRICS REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nTotal Predictions: %d\n", s.TotalPredictions)
	fmt.Fprintf(w, "\nCategory Classification:\n")
	fmt.Fprintf(w, "  Accuracy: %.2f%%\n", s.CategoryAccuracy*100)
	fmt.Fprintf(w, "\nOntology Term Extraction:\n")
	fmt.Fprintf(w, "  Precision: %.2f%%\n", s.OntologyPrecision*100)
	fmt.Fprintf(w, "  Recall: %.2f%%\n", s.OntologyRecall*100)
	fmt.Fprintf(w, "  F1 Score: %.2f%%\n", s.OntologyF1*100)
	fmt.Fprintf(w, "\nValidation Detection:\n")
	fmt.Fprintf(w, "  Accuracy: %.2f%%\n", s.ValidationAccuracy*100)
	fmt.Fprintf(w, "\nConfidence-Quality Correlation:\n")
	fmt.Fprintf(w, "  Correlation: %.3f\n", s.ConfidenceCorrelation)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "INTERPRETATION")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Overall Score: %.2f%%\n", s.OverallScore()*100)
	fmt.Fprintf(w, "Grade: %s\n", s.Grade())
}

// f1 is the harmonic mean with the zero-denominator convention.
func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Zero variance in either series yields 0.0.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	meanX, meanY := 0.0, 0.0
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	num, varX, varY := 0.0, 0.0, 0.0
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX) * math.Sqrt(varY)
	if denom == 0 {
		return 0.0
	}
	return num / denom
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// intersectionSize counts the items present in both sets.
func intersectionSize(a, b map[string]bool) int {
	count := 0
	for item := range a {
		if b[item] {
			count++
		}
	}
	return count
}
