// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biomarker defines the validated biomarker data model: entities,
// relationships, statistics, controlled-vocabulary terms, and the extraction
// aggregate. Every type is validated at construction; code that receives a
// constructed value may assume all invariants hold and never re-checks.
package biomarker

// Category classifies a biomarker by omics layer and measurement approach.
type Category string

const (
	Epigenetic     Category = "epigenetic"
	Proteomic      Category = "proteomic"
	Metabolomic    Category = "metabolomic"
	Genomic        Category = "genomic"
	Transcriptomic Category = "transcriptomic"
	Cellular       Category = "cellular"
	MultiOmics     Category = "multi_omics"
)

// Categories returns all categories in their fixed canonical order. The
// confusion matrix and report output depend on this ordering.
func Categories() []Category {
	return []Category{
		Epigenetic,
		Proteomic,
		Metabolomic,
		Genomic,
		Transcriptomic,
		Cellular,
		MultiOmics,
	}
}

// ParseCategory maps a category string from a model response to a Category.
// Unrecognized strings return ok=false rather than an error so batch parsing
// can record and skip a malformed record without aborting.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case Epigenetic, Proteomic, Metabolomic, Genomic, Transcriptomic, Cellular, MultiOmics:
		return Category(s), true
	}
	return "", false
}

// RelationType is the predicate of a biomarker relationship.
type RelationType string

const (
	Measures       RelationType = "measures"
	Predicts       RelationType = "predicts"
	CorrelatesWith RelationType = "correlates_with"
	ValidatedBy    RelationType = "validated_by"
	AssociatedWith RelationType = "associated_with"
	Influences     RelationType = "influences"
	DerivedFrom    RelationType = "derived_from"
)

// ParseRelationType maps a predicate string from a model response to a
// RelationType, with the same non-throwing contract as ParseCategory.
func ParseRelationType(s string) (RelationType, bool) {
	switch RelationType(s) {
	case Measures, Predicts, CorrelatesWith, ValidatedBy, AssociatedWith, Influences, DerivedFrom:
		return RelationType(s), true
	}
	return "", false
}
