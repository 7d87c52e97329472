// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

import (
	"fmt"
	"strings"
)

// Violation describes one rule broken during construction, naming the
// offending field and the value that broke it.
type Violation struct {
	// Field is the field name in wire form (e.g. "p_value", "go_terms").
	Field string

	// Value is the offending value.
	Value any

	// Rule is a human-readable statement of the broken rule.
	Rule string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s, got %v", v.Field, v.Rule, v.Value)
}

// ValidationError reports every rule a candidate object violated. Field
// checks run first, then cross-field checks; all violations for one object
// are aggregated so the caller sees the full picture. Within a list field
// only the first invalid element is reported.
type ValidationError struct {
	// Kind names the object type in wire form (e.g. "statistics").
	Kind string

	// Violations holds the broken rules in check order. Never empty.
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

// check accumulates violations during validation of one object.
type check struct {
	kind       string
	violations []Violation
}

func (c *check) fail(field string, value any, rule string) {
	c.violations = append(c.violations, Violation{Field: field, Value: value, Rule: rule})
}

// nested folds the violations of a nested object's *ValidationError into
// this check, prefixing each field with the nested field name.
func (c *check) nested(field string, err error) {
	ve, ok := err.(*ValidationError)
	if !ok {
		c.fail(field, err.Error(), "must be valid")
		return
	}
	for _, v := range ve.Violations {
		c.violations = append(c.violations, Violation{
			Field: field + "." + v.Field,
			Value: v.Value,
			Rule:  v.Rule,
		})
	}
}

// err returns the aggregated *ValidationError, or nil if nothing failed.
func (c *check) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Violations: c.violations}
}
