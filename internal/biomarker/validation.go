// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

// ValidationStatus records how a biomarker has been validated across
// cohorts and studies.
type ValidationStatus struct {
	// IsValidated reports validation across multiple cohorts.
	IsValidated bool `json:"is_validated" yaml:"is_validated"`

	// ValidationCohorts names the cohorts the biomarker was validated in.
	ValidationCohorts []string `json:"validation_cohorts,omitempty" yaml:"validation_cohorts,omitempty"`

	// ValidationStudies lists PMIDs or DOIs of validation studies.
	ValidationStudies []string `json:"validation_studies,omitempty" yaml:"validation_studies,omitempty"`

	// ReplicationCount is the number of independent replications.
	ReplicationCount int `json:"replication_count" yaml:"replication_count"`

	// ReproducibilityCV is the coefficient of variation for repeated
	// measurement, in [0, 1]. A biomarker whose measurement variability
	// exceeds 10% cannot carry this status, so values above 0.10 are
	// rejected at construction.
	ReproducibilityCV *float64 `json:"reproducibility_cv,omitempty" yaml:"reproducibility_cv,omitempty"`
}

// NewValidationStatus validates v and returns it, or a *ValidationError.
func NewValidationStatus(v ValidationStatus) (*ValidationStatus, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *ValidationStatus) validate() error {
	c := check{kind: "validation_status"}

	if v.ReplicationCount < 0 {
		c.fail("replication_count", v.ReplicationCount, "must be >= 0")
	}
	if v.ReproducibilityCV != nil {
		cv := *v.ReproducibilityCV
		if cv < 0.0 || cv > 1.0 {
			c.fail("reproducibility_cv", cv, "must be within [0, 1]")
		} else if cv > 0.10 {
			c.fail("reproducibility_cv", cv, "must be <= 0.10 for validated biomarkers")
		}
	}

	return c.err()
}
