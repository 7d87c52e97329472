// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

// Association links a biomarker to a phenotype or outcome.
type Association struct {
	// Phenotype is the associated phenotype or outcome. Required.
	Phenotype string `json:"phenotype" yaml:"phenotype"`

	// AssociationType is free-form; "correlation", "prediction", and
	// "causation" by convention. Not enforced as an enum.
	AssociationType string `json:"association_type" yaml:"association_type"`

	// EffectMeasure names the measure: hazard ratio, odds ratio, correlation.
	EffectMeasure string `json:"effect_measure,omitempty" yaml:"effect_measure,omitempty"`

	// EffectValue is the numerical value of the association.
	EffectValue *float64 `json:"effect_value,omitempty" yaml:"effect_value,omitempty"`

	// Statistics is the statistical support for the association.
	Statistics *Statistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// NewAssociation validates a and returns it, or a *ValidationError.
func NewAssociation(a Association) (*Association, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Association) validate() error {
	c := check{kind: "association"}

	if a.Phenotype == "" {
		c.fail("phenotype", a.Phenotype, "must not be empty")
	}
	if a.Statistics != nil {
		if err := a.Statistics.validate(); err != nil {
			c.nested("statistics", err)
		}
	}

	return c.err()
}
