// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

// DefaultHighConfidence is the default threshold for
// HighConfidenceEntities.
const DefaultHighConfidence = 0.85

// BiomarkerExtraction aggregates the result of one extraction pass over a
// document. It owns its entities and relationships exclusively; entities
// carry no backlink to the extraction.
type BiomarkerExtraction struct {
	// Entities are the extracted biomarker entities.
	Entities []BiomarkerEntity `json:"entities" yaml:"entities"`

	// Relationships are typed links between entity names.
	Relationships []BiomarkerRelationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`

	// DocumentMetadata carries source document metadata (paper ID, title).
	DocumentMetadata map[string]any `json:"document_metadata,omitempty" yaml:"document_metadata,omitempty"`

	// ExtractionTimestamp is the ISO timestamp of the extraction run.
	ExtractionTimestamp string `json:"extraction_timestamp,omitempty" yaml:"extraction_timestamp,omitempty"`

	// ModelVersion is the model used for extraction.
	ModelVersion string `json:"model_version,omitempty" yaml:"model_version,omitempty"`

	// Errors records per-record parse or validation failures from the
	// extraction run. A failed record never aborts the pass.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ValidatedBiomarkers returns the entities validated across cohorts.
func (x *BiomarkerExtraction) ValidatedBiomarkers() []BiomarkerEntity {
	var out []BiomarkerEntity
	for _, e := range x.Entities {
		if e.IsValidated() {
			out = append(out, e)
		}
	}
	return out
}

// HighConfidenceEntities returns the entities at or above threshold.
// A threshold of 0 uses DefaultHighConfidence.
func (x *BiomarkerExtraction) HighConfidenceEntities(threshold float64) []BiomarkerEntity {
	if threshold == 0 {
		threshold = DefaultHighConfidence
	}
	var out []BiomarkerEntity
	for _, e := range x.Entities {
		if e.Confidence >= threshold {
			out = append(out, e)
		}
	}
	return out
}

// OverallQuality is the mean of the entities' validation scores scaled to
// [0, 1]. An extraction with no entities scores exactly 0.0.
func (x *BiomarkerExtraction) OverallQuality() float64 {
	if len(x.Entities) == 0 {
		return 0.0
	}
	sum := 0
	for _, e := range x.Entities {
		sum += e.ValidationScore()
	}
	return float64(sum) / float64(len(x.Entities)) / 100.0
}
