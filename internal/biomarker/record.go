// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

import "fmt"

// EntityRecord is the loose, wire-shaped form of a biomarker entity as a
// language model returns it. Nothing in a record is trusted; Entity maps it
// through the validating constructor. One bad record yields one error for
// the caller to log and skip, so batch parsing never aborts on a malformed
// model response.
type EntityRecord struct {
	Name              string            `json:"name" yaml:"name"`
	Category          string            `json:"category" yaml:"category"`
	MeasurementMethod string            `json:"measurement_method" yaml:"measurement_method"`
	Finding           string            `json:"finding" yaml:"finding"`
	TissueSource      string            `json:"tissue_source,omitempty" yaml:"tissue_source,omitempty"`
	Statistics        *Statistics       `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	ValidationStatus  *ValidationStatus `json:"validation_status,omitempty" yaml:"validation_status,omitempty"`
	ControlledTerms   *ControlledTerms  `json:"controlled_terms,omitempty" yaml:"controlled_terms,omitempty"`
	Associations      []Association     `json:"associations,omitempty" yaml:"associations,omitempty"`
	SourceSpan        []int             `json:"source_span,omitempty" yaml:"source_span,omitempty"`
	Confidence        float64           `json:"confidence" yaml:"confidence"`
	Metadata          map[string]any    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Entity converts the record into a validated BiomarkerEntity.
func (r EntityRecord) Entity() (*BiomarkerEntity, error) {
	span, err := parseSpan(r.SourceSpan)
	if err != nil {
		return nil, fmt.Errorf("source_span: %w", err)
	}

	e := BiomarkerEntity{
		Name:              r.Name,
		Category:          Category(r.Category),
		MeasurementMethod: r.MeasurementMethod,
		Finding:           r.Finding,
		TissueSource:      r.TissueSource,
		Statistics:        r.Statistics,
		ValidationStatus:  r.ValidationStatus,
		Associations:      r.Associations,
		SourceSpan:        span,
		Confidence:        r.Confidence,
		Metadata:          r.Metadata,
	}
	if r.ControlledTerms != nil {
		e.ControlledTerms = *r.ControlledTerms
	}

	return NewBiomarkerEntity(e)
}

// RelationshipRecord is the wire-shaped form of a relationship.
type RelationshipRecord struct {
	Subject      string      `json:"subject" yaml:"subject"`
	Predicate    string      `json:"predicate" yaml:"predicate"`
	Object       string      `json:"object" yaml:"object"`
	Context      string      `json:"context,omitempty" yaml:"context,omitempty"`
	EvidenceSpan []int       `json:"evidence_span,omitempty" yaml:"evidence_span,omitempty"`
	Confidence   float64     `json:"confidence" yaml:"confidence"`
	Statistics   *Statistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// Relationship converts the record into a validated BiomarkerRelationship.
func (r RelationshipRecord) Relationship() (*BiomarkerRelationship, error) {
	span, err := parseSpan(r.EvidenceSpan)
	if err != nil {
		return nil, fmt.Errorf("evidence_span: %w", err)
	}

	rel := BiomarkerRelationship{
		Subject:      r.Subject,
		Predicate:    RelationType(r.Predicate),
		Object:       r.Object,
		Context:      r.Context,
		EvidenceSpan: span,
		Confidence:   r.Confidence,
		Statistics:   r.Statistics,
	}

	return NewBiomarkerRelationship(rel)
}

// parseSpan converts a wire span ([start, end]) into the fixed-size form.
// Empty means absent.
func parseSpan(span []int) (*[2]int, error) {
	switch len(span) {
	case 0:
		return nil, nil
	case 2:
		return &[2]int{span[0], span[1]}, nil
	default:
		return nil, fmt.Errorf("expected 2 elements, got %d", len(span))
	}
}
