// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

// Statistics holds the statistical support for a biomarker finding or
// association. All fields are optional; absent fields skip their checks.
// Immutable once constructed.
type Statistics struct {
	// PValue is the reported significance level. When present it must lie
	// in [0, 1] and be below 0.05: a non-significant result is rejected at
	// construction rather than flagged downstream.
	PValue *float64 `json:"p_value,omitempty" yaml:"p_value,omitempty"`

	// EffectSize is a Cohen's d, odds ratio, hazard ratio, or fold change.
	EffectSize *float64 `json:"effect_size,omitempty" yaml:"effect_size,omitempty"`

	// CILower and CIUpper bound the 95% confidence interval. When both are
	// present, CILower must be strictly below CIUpper.
	CILower *float64 `json:"confidence_interval_lower,omitempty" yaml:"confidence_interval_lower,omitempty"`
	CIUpper *float64 `json:"confidence_interval_upper,omitempty" yaml:"confidence_interval_upper,omitempty"`

	// SampleSize is the number of samples in the study, at least 1.
	SampleSize *int `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`

	// TestStatistic is a t-statistic, z-score, or F-statistic.
	TestStatistic *float64 `json:"test_statistic,omitempty" yaml:"test_statistic,omitempty"`

	// CorrelationCoefficient is a Pearson or Spearman r in [-1, 1].
	CorrelationCoefficient *float64 `json:"correlation_coefficient,omitempty" yaml:"correlation_coefficient,omitempty"`
}

// NewStatistics validates s and returns it, or a *ValidationError naming
// every violated rule. No partially valid Statistics is ever returned.
func NewStatistics(s Statistics) (*Statistics, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Statistics) validate() error {
	c := check{kind: "statistics"}

	if s.PValue != nil {
		p := *s.PValue
		if p < 0.0 || p > 1.0 {
			c.fail("p_value", p, "must be within [0, 1]")
		} else if p >= 0.05 {
			c.fail("p_value", p, "must be < 0.05 for statistical significance")
		}
	}

	if s.SampleSize != nil && *s.SampleSize < 1 {
		c.fail("sample_size", *s.SampleSize, "must be >= 1")
	}

	if s.CorrelationCoefficient != nil {
		if r := *s.CorrelationCoefficient; r < -1.0 || r > 1.0 {
			c.fail("correlation_coefficient", r, "must be within [-1, 1]")
		}
	}

	// Cross-field check runs after field checks.
	if s.CILower != nil && s.CIUpper != nil && *s.CILower >= *s.CIUpper {
		c.fail("confidence_interval_lower", *s.CILower,
			"confidence interval lower bound must be less than upper bound")
	}

	return c.err()
}
