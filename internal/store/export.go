// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the knowledge base to knowledge/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	results, err := s.exportResults(ctx, opts)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(s.exportPath("export.yaml"), data, 0o644)
}

// ExportJSON writes the knowledge base to knowledge/index/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	results, err := s.exportResults(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(s.exportPath("export.json"), data, 0o644)
}

// ExportCSV writes a flat spreadsheet-friendly view of the entities to
// knowledge/index/export.csv. Nested statistics and ontology terms are
// reduced to the columns analysts ask for.
func (s *Store) ExportCSV(ctx context.Context, opts QueryOptions) error {
	results, err := s.exportResults(ctx, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(s.exportPath("export.csv"))
	if err != nil {
		return fmt.Errorf("creating export.csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"name", "category", "measurement_method", "finding", "tissue_source",
		"confidence", "validation_score", "is_validated", "ontology_terms",
		"paper_id", "paper_title",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range results {
		e := r.Entity
		row := []string{
			e.Name,
			string(e.Category),
			e.MeasurementMethod,
			e.Finding,
			e.TissueSource,
			strconv.FormatFloat(e.Confidence, 'f', 2, 64),
			strconv.Itoa(r.ValidationScore),
			strconv.FormatBool(e.IsValidated()),
			strconv.Itoa(e.ControlledTerms.OntologyTermCount()),
			r.PaperID,
			r.PaperTitle,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", e.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *Store) exportResults(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return results, nil
}

func (s *Store) exportPath(name string) string {
	return filepath.Join(s.knowledgeDir, indexDir, name)
}
