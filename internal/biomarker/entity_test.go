package biomarker

import (
	"strings"
	"testing"
)

// validEntity returns a minimal entity that passes construction. Tests
// mutate single fields from this baseline.
func validEntity() BiomarkerEntity {
	return BiomarkerEntity{
		Name:              "GDF-15",
		Category:          Proteomic,
		MeasurementMethod: "ELISA",
		Finding:           "Median 850 pg/mL in aged vs 320 pg/mL in young",
		Confidence:        0.92,
	}
}

func TestNewBiomarkerEntityFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BiomarkerEntity)
		wantErr string
	}{
		{
			name:   "baseline is valid",
			mutate: func(e *BiomarkerEntity) {},
		},
		{
			name:    "one-character name rejected",
			mutate:  func(e *BiomarkerEntity) { e.Name = "X" },
			wantErr: "name",
		},
		{
			name:    "empty name rejected",
			mutate:  func(e *BiomarkerEntity) { e.Name = "" },
			wantErr: "name",
		},
		{
			name:    "unknown category rejected",
			mutate:  func(e *BiomarkerEntity) { e.Category = "lipidomic" },
			wantErr: "category",
		},
		{
			name:    "short measurement method rejected",
			mutate:  func(e *BiomarkerEntity) { e.MeasurementMethod = "q" },
			wantErr: "measurement_method",
		},
		{
			name:    "nine-character finding rejected",
			mutate:  func(e *BiomarkerEntity) { e.Finding = "123456789" },
			wantErr: "finding",
		},
		{
			name:   "ten-character finding accepted",
			mutate: func(e *BiomarkerEntity) { e.Finding = "1234567890" },
		},
		{
			name:    "confidence below floor rejected",
			mutate:  func(e *BiomarkerEntity) { e.Confidence = 0.69 },
			wantErr: "confidence",
		},
		{
			name:   "confidence at floor accepted",
			mutate: func(e *BiomarkerEntity) { e.Confidence = 0.70 },
		},
		{
			name:    "confidence above one rejected",
			mutate:  func(e *BiomarkerEntity) { e.Confidence = 1.2 },
			wantErr: "confidence",
		},
		{
			name: "invalid nested statistics rejected",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{PValue: f64(0.2)}
			},
			wantErr: "statistics.p_value",
		},
		{
			name: "invalid nested terms rejected",
			mutate: func(e *BiomarkerEntity) {
				e.ControlledTerms = ControlledTerms{GOTerms: []string{"bad"}}
			},
			wantErr: "controlled_terms.go_terms",
		},
		{
			name: "excessive reproducibility CV rejected",
			mutate: func(e *BiomarkerEntity) {
				e.ValidationStatus = &ValidationStatus{ReproducibilityCV: f64(0.15)}
			},
			wantErr: "validation_status.reproducibility_cv",
		},
		{
			name: "association without phenotype rejected",
			mutate: func(e *BiomarkerEntity) {
				e.Associations = []Association{{AssociationType: "correlation"}}
			},
			wantErr: "associations[0].phenotype",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity()
			tt.mutate(&e)

			got, err := NewBiomarkerEntity(e)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewBiomarkerEntity() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("NewBiomarkerEntity() succeeded, want error")
			}
			if got != nil {
				t.Error("NewBiomarkerEntity() returned an entity alongside an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not name %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfidenceFloorBeatsOtherwisePerfectEntity(t *testing.T) {
	// A fully validated, statistically strong entity still fails below 0.70.
	e := validEntity()
	e.Confidence = 0.65
	e.Statistics = &Statistics{PValue: f64(0.0001), SampleSize: ip(1500)}
	e.ValidationStatus = &ValidationStatus{IsValidated: true, ReplicationCount: 3}

	if _, err := NewBiomarkerEntity(e); err == nil {
		t.Fatal("NewBiomarkerEntity() succeeded with confidence 0.65")
	}
}

func TestValidationScore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BiomarkerEntity)
		want   int
	}{
		{
			name:   "bare entity scores zero",
			mutate: func(e *BiomarkerEntity) { e.Confidence = 0.75 },
			want:   0,
		},
		{
			name: "all contributions clamp to 100",
			mutate: func(e *BiomarkerEntity) {
				// 20 validated + 30 p + 20 sample + 15 terms + 30 replication = 115.
				e.Statistics = &Statistics{PValue: f64(0.0001), SampleSize: ip(1500)}
				e.ValidationStatus = &ValidationStatus{IsValidated: true, ReplicationCount: 3}
				e.ControlledTerms = ControlledTerms{
					GOTerms:      []string{"GO:0006306"},
					KEGGPathways: []string{"hsa04060"},
					UniProtIDs:   []string{"Q99988"},
				}
			},
			want: 100,
		},
		{
			name: "p below 0.001 scores 30",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{PValue: f64(0.0005)}
			},
			want: 30,
		},
		{
			name: "p below 0.01 scores 20",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{PValue: f64(0.005)}
			},
			want: 20,
		},
		{
			name: "p merely significant scores 10",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{PValue: f64(0.04)}
			},
			want: 10,
		},
		{
			name: "sample tiers are exclusive",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{SampleSize: ip(501)}
			},
			want: 15,
		},
		{
			name: "sample at tier boundary stays in lower tier",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{SampleSize: ip(1000)}
			},
			want: 15,
		},
		{
			name: "small sample scores nothing",
			mutate: func(e *BiomarkerEntity) {
				e.Statistics = &Statistics{SampleSize: ip(100)}
			},
			want: 0,
		},
		{
			name: "ontology terms cap at 20",
			mutate: func(e *BiomarkerEntity) {
				e.ControlledTerms = ControlledTerms{
					GOTerms: []string{"GO:0000001", "GO:0000002", "GO:0000003", "GO:0000004", "GO:0000005"},
				}
			},
			want: 20,
		},
		{
			name: "mesh terms and gene symbols do not score",
			mutate: func(e *BiomarkerEntity) {
				e.ControlledTerms = ControlledTerms{
					MeSHTerms:   []string{"D019175"},
					GeneSymbols: []string{"GDF15"},
				}
			},
			want: 0,
		},
		{
			name: "replication caps at 30",
			mutate: func(e *BiomarkerEntity) {
				e.ValidationStatus = &ValidationStatus{ReplicationCount: 5}
			},
			want: 30,
		},
		{
			name: "validated without replication scores 20",
			mutate: func(e *BiomarkerEntity) {
				e.ValidationStatus = &ValidationStatus{IsValidated: true}
			},
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity()
			tt.mutate(&e)

			entity, err := NewBiomarkerEntity(e)
			if err != nil {
				t.Fatalf("NewBiomarkerEntity() error = %v", err)
			}
			if got := entity.ValidationScore(); got != tt.want {
				t.Errorf("ValidationScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationScoreIsDeterministic(t *testing.T) {
	e := validEntity()
	e.Statistics = &Statistics{PValue: f64(0.002), SampleSize: ip(800)}
	e.ControlledTerms = ControlledTerms{GOTerms: []string{"GO:0006306"}}

	entity, err := NewBiomarkerEntity(e)
	if err != nil {
		t.Fatalf("NewBiomarkerEntity() error = %v", err)
	}

	first := entity.ValidationScore()
	for i := 0; i < 10; i++ {
		if got := entity.ValidationScore(); got != first {
			t.Fatalf("ValidationScore() changed between calls: %d then %d", first, got)
		}
	}
	if first != 40 { // 20 (p<0.01) + 15 (sample>500) + 5 (one term)
		t.Errorf("ValidationScore() = %d, want 40", first)
	}
}
