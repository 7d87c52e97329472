package biomarker

import "testing"

func TestControlledTermFormats(t *testing.T) {
	tests := []struct {
		name    string
		terms   ControlledTerms
		wantErr bool
	}{
		{name: "empty terms"},
		{name: "valid GO term", terms: ControlledTerms{GOTerms: []string{"GO:0006306"}}},
		{name: "GO term too short", terms: ControlledTerms{GOTerms: []string{"GO:123"}}, wantErr: true},
		{name: "GO term wrong prefix", terms: ControlledTerms{GOTerms: []string{"INVALID"}}, wantErr: true},
		{name: "GO term non-digit suffix", terms: ControlledTerms{GOTerms: []string{"GO:00063AB"}}, wantErr: true},
		{name: "human KEGG pathway", terms: ControlledTerms{KEGGPathways: []string{"hsa04060"}}},
		{name: "mouse KEGG pathway", terms: ControlledTerms{KEGGPathways: []string{"mmu04060"}}},
		{name: "KEGG wrong prefix", terms: ControlledTerms{KEGGPathways: []string{"invalid123"}}, wantErr: true},
		{name: "UniProt six chars", terms: ControlledTerms{UniProtIDs: []string{"Q99988"}}},
		{name: "UniProt ten chars", terms: ControlledTerms{UniProtIDs: []string{"A0A0B4J2D5"}}},
		{name: "UniProt five chars rejected", terms: ControlledTerms{UniProtIDs: []string{"Q9998"}}, wantErr: true},
		{name: "UniProt eleven chars rejected", terms: ControlledTerms{UniProtIDs: []string{"A0A0B4J2D5X"}}, wantErr: true},
		{name: "valid MeSH descriptor", terms: ControlledTerms{MeSHTerms: []string{"D019175"}}},
		{name: "MeSH wrong prefix", terms: ControlledTerms{MeSHTerms: []string{"INVALID"}}, wantErr: true},
		{name: "MeSH non-digit suffix", terms: ControlledTerms{MeSHTerms: []string{"D19X75"}}, wantErr: true},
		{name: "gene symbols unconstrained", terms: ControlledTerms{GeneSymbols: []string{"TP53", "anything-goes"}}},
		{
			name: "second element invalid",
			terms: ControlledTerms{
				GOTerms: []string{"GO:0006306", "GO:bad"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewControlledTerms(tt.terms)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewControlledTerms() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestControlledTermsFirstInvalidElementReported(t *testing.T) {
	// Two bad GO terms: only the first is reported for that list.
	_, err := NewControlledTerms(ControlledTerms{
		GOTerms: []string{"GO:bad1", "GO:bad2"},
	})
	if err == nil {
		t.Fatal("NewControlledTerms() succeeded, want error")
	}
	ve := err.(*ValidationError)
	if len(ve.Violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(ve.Violations))
	}
	if got := ve.Violations[0].Value; got != "GO:bad1" {
		t.Errorf("reported value = %v, want first invalid element", got)
	}
}

func TestOntologyTermCountExcludesMeSHAndGeneSymbols(t *testing.T) {
	terms := ControlledTerms{
		GOTerms:      []string{"GO:0006306", "GO:0043065"},
		KEGGPathways: []string{"hsa04060"},
		UniProtIDs:   []string{"Q99988"},
		MeSHTerms:    []string{"D019175"},
		GeneSymbols:  []string{"GDF15"},
	}
	if got := terms.OntologyTermCount(); got != 4 {
		t.Errorf("OntologyTermCount() = %d, want 4", got)
	}
}
