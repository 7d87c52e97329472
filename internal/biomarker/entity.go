// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

import "fmt"

// MinEntityConfidence is the confidence floor for a reliable extraction.
// Entities below it fail construction regardless of other fields.
const MinEntityConfidence = 0.70

// BiomarkerEntity is a named, categorized measurable quantity reported in
// scientific text, with supporting statistics and ontology mappings. The
// entity and everything nested in it are validated at construction; a
// constructed entity is fully valid.
type BiomarkerEntity struct {
	// Name is the biomarker name or identifier, at least 2 characters.
	Name string `json:"name" yaml:"name"`

	// Category is the omics layer the biomarker belongs to.
	Category Category `json:"category" yaml:"category"`

	// MeasurementMethod is the laboratory technique or assay used,
	// at least 2 characters.
	MeasurementMethod string `json:"measurement_method" yaml:"measurement_method"`

	// Finding is the quantitative or qualitative finding description,
	// at least 10 characters.
	Finding string `json:"finding" yaml:"finding"`

	// TissueSource is the biological tissue or fluid source.
	TissueSource string `json:"tissue_source,omitempty" yaml:"tissue_source,omitempty"`

	// Statistics holds the statistical support for the finding.
	Statistics *Statistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`

	// ValidationStatus records validation across cohorts and studies.
	ValidationStatus *ValidationStatus `json:"validation_status,omitempty" yaml:"validation_status,omitempty"`

	// ControlledTerms maps the biomarker to standard vocabularies.
	// Zero value means no mappings.
	ControlledTerms ControlledTerms `json:"controlled_terms" yaml:"controlled_terms"`

	// Associations links the biomarker to phenotypes or outcomes.
	Associations []Association `json:"associations,omitempty" yaml:"associations,omitempty"`

	// SourceSpan is the [start, end) character span in the source text.
	SourceSpan *[2]int `json:"source_span,omitempty" yaml:"source_span,omitempty"`

	// Confidence is the extraction confidence in [0, 1], at least
	// MinEntityConfidence.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Metadata carries free-form additional data.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewBiomarkerEntity validates e and everything nested in it, returning the
// entity or a *ValidationError naming every violated rule.
func NewBiomarkerEntity(e BiomarkerEntity) (*BiomarkerEntity, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *BiomarkerEntity) validate() error {
	c := check{kind: "biomarker_entity"}

	if len(e.Name) < 2 {
		c.fail("name", e.Name, "must be at least 2 characters")
	}
	if _, ok := ParseCategory(string(e.Category)); !ok {
		c.fail("category", string(e.Category), "must be a known biomarker category")
	}
	if len(e.MeasurementMethod) < 2 {
		c.fail("measurement_method", e.MeasurementMethod, "must be at least 2 characters")
	}
	if len(e.Finding) < 10 {
		c.fail("finding", e.Finding, "must be at least 10 characters")
	}
	if e.Confidence < 0.0 || e.Confidence > 1.0 {
		c.fail("confidence", e.Confidence, "must be within [0, 1]")
	} else if e.Confidence < MinEntityConfidence {
		c.fail("confidence", e.Confidence,
			fmt.Sprintf("must be >= %.2f for reliable extraction", MinEntityConfidence))
	}

	if e.Statistics != nil {
		if err := e.Statistics.validate(); err != nil {
			c.nested("statistics", err)
		}
	}
	if e.ValidationStatus != nil {
		if err := e.ValidationStatus.validate(); err != nil {
			c.nested("validation_status", err)
		}
	}
	if err := e.ControlledTerms.validate(); err != nil {
		c.nested("controlled_terms", err)
	}
	for i := range e.Associations {
		if err := e.Associations[i].validate(); err != nil {
			c.nested(fmt.Sprintf("associations[%d]", i), err)
		}
	}

	return c.err()
}

// Validation score contributions. Additive; the total is clamped to 100.
const (
	scoreValidated = 20 // cross-cohort validation

	scorePBelow001 = 30 // p < 0.001
	scorePBelow01  = 20 // p < 0.01
	scorePPresent  = 10 // any significant p

	scoreSampleOver1000 = 20
	scoreSampleOver500  = 15
	scoreSampleOver100  = 10

	scorePerOntologyTerm = 5
	scoreOntologyCap     = 20

	scorePerReplication = 10
	scoreReplicationCap = 30

	scoreMax = 100
)

// ValidationScore derives a 0-100 quality score for the entity from
// replication, significance, sample size, and ontology coverage. Pure
// function of entity state; deterministic.
func (e *BiomarkerEntity) ValidationScore() int {
	score := 0

	if e.ValidationStatus != nil && e.ValidationStatus.IsValidated {
		score += scoreValidated
	}

	if e.Statistics != nil && e.Statistics.PValue != nil {
		switch p := *e.Statistics.PValue; {
		case p < 0.001:
			score += scorePBelow001
		case p < 0.01:
			score += scorePBelow01
		default:
			score += scorePPresent
		}
	}

	if e.Statistics != nil && e.Statistics.SampleSize != nil {
		switch n := *e.Statistics.SampleSize; {
		case n > 1000:
			score += scoreSampleOver1000
		case n > 500:
			score += scoreSampleOver500
		case n > 100:
			score += scoreSampleOver100
		}
	}

	termScore := e.ControlledTerms.OntologyTermCount() * scorePerOntologyTerm
	if termScore > scoreOntologyCap {
		termScore = scoreOntologyCap
	}
	score += termScore

	if e.ValidationStatus != nil && e.ValidationStatus.ReplicationCount > 0 {
		repScore := e.ValidationStatus.ReplicationCount * scorePerReplication
		if repScore > scoreReplicationCap {
			repScore = scoreReplicationCap
		}
		score += repScore
	}

	if score > scoreMax {
		score = scoreMax
	}
	return score
}

// IsValidated reports whether the entity carries cross-cohort validation.
func (e *BiomarkerEntity) IsValidated() bool {
	return e.ValidationStatus != nil && e.ValidationStatus.IsValidated
}
