// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biomarker

import "strings"

// ControlledTerms maps a biomarker to standard ontology identifiers. The
// five lists are independent; each element is format-checked at
// construction, with the first invalid element per list reported.
type ControlledTerms struct {
	// GOTerms are Gene Ontology identifiers: "GO:" plus exactly 7 digits.
	GOTerms []string `json:"go_terms,omitempty" yaml:"go_terms,omitempty"`

	// KEGGPathways are KEGG pathway identifiers prefixed "hsa" or "mmu".
	KEGGPathways []string `json:"kegg_pathways,omitempty" yaml:"kegg_pathways,omitempty"`

	// UniProtIDs are UniProt accessions, 6 to 10 characters.
	UniProtIDs []string `json:"uniprot_ids,omitempty" yaml:"uniprot_ids,omitempty"`

	// MeSHTerms are Medical Subject Heading descriptors: "D" plus digits.
	MeSHTerms []string `json:"mesh_terms,omitempty" yaml:"mesh_terms,omitempty"`

	// GeneSymbols are HGNC gene symbols. Format is not constrained.
	GeneSymbols []string `json:"gene_symbols,omitempty" yaml:"gene_symbols,omitempty"`
}

// NewControlledTerms validates t and returns it, or a *ValidationError.
func NewControlledTerms(t ControlledTerms) (*ControlledTerms, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *ControlledTerms) validate() error {
	c := check{kind: "controlled_terms"}

	for _, term := range t.GOTerms {
		if !validGOTerm(term) {
			c.fail("go_terms", term, "must match format GO:XXXXXXX")
			break
		}
	}
	for _, pathway := range t.KEGGPathways {
		if !strings.HasPrefix(pathway, "hsa") && !strings.HasPrefix(pathway, "mmu") {
			c.fail("kegg_pathways", pathway, "must start with hsa or mmu")
			break
		}
	}
	for _, id := range t.UniProtIDs {
		if len(id) < 6 || len(id) > 10 {
			c.fail("uniprot_ids", id, "must be 6-10 characters")
			break
		}
	}
	for _, term := range t.MeSHTerms {
		if !validMeSHTerm(term) {
			c.fail("mesh_terms", term, "must match format DXXXXXX")
			break
		}
	}

	return c.err()
}

// OntologyTermCount counts GO, KEGG, and UniProt identifiers. MeSH terms and
// gene symbols are deliberately excluded: the validation score has always
// rewarded only the first three vocabularies, and the asymmetry is kept as a
// policy choice pending review rather than silently widened.
func (t *ControlledTerms) OntologyTermCount() int {
	return len(t.GOTerms) + len(t.KEGGPathways) + len(t.UniProtIDs)
}

func validGOTerm(term string) bool {
	if len(term) != 10 || !strings.HasPrefix(term, "GO:") {
		return false
	}
	for _, r := range term[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validMeSHTerm(term string) bool {
	if len(term) < 2 || term[0] != 'D' {
		return false
	}
	for _, r := range term[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
