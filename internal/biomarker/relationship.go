// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

import "fmt"

// MinRelationshipConfidence is the confidence floor for relationships.
// Lower than the entity floor: a typed link is useful at lower certainty
// than a standalone entity.
const MinRelationshipConfidence = 0.60

// BiomarkerRelationship is a typed subject-predicate-object link between
// named entities or concepts.
type BiomarkerRelationship struct {
	// Subject is the subject entity name.
	Subject string `json:"subject" yaml:"subject"`

	// Predicate is the relationship type.
	Predicate RelationType `json:"predicate" yaml:"predicate"`

	// Object is the object entity name.
	Object string `json:"object" yaml:"object"`

	// Context is surrounding information for the relationship.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// EvidenceSpan is the [start, end) character span of supporting evidence.
	EvidenceSpan *[2]int `json:"evidence_span,omitempty" yaml:"evidence_span,omitempty"`

	// Confidence is the relationship confidence in [0, 1], at least
	// MinRelationshipConfidence.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Statistics is the statistical support for the relationship.
	Statistics *Statistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// NewBiomarkerRelationship validates r and returns it, or a *ValidationError.
func NewBiomarkerRelationship(r BiomarkerRelationship) (*BiomarkerRelationship, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *BiomarkerRelationship) validate() error {
	c := check{kind: "biomarker_relationship"}

	if r.Subject == "" {
		c.fail("subject", r.Subject, "must not be empty")
	}
	if _, ok := ParseRelationType(string(r.Predicate)); !ok {
		c.fail("predicate", string(r.Predicate), "must be a known relation type")
	}
	if r.Object == "" {
		c.fail("object", r.Object, "must not be empty")
	}
	if r.Confidence < 0.0 || r.Confidence > 1.0 {
		c.fail("confidence", r.Confidence, "must be within [0, 1]")
	} else if r.Confidence < MinRelationshipConfidence {
		c.fail("confidence", r.Confidence,
			fmt.Sprintf("must be >= %.2f", MinRelationshipConfidence))
	}

	if r.Statistics != nil {
		if err := r.Statistics.validate(); err != nil {
			c.nested("statistics", err)
		}
	}

	return c.err()
}
