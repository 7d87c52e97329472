// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/biomarker-engine/internal/accuracy"
	"github.com/pdiddy/biomarker-engine/internal/biomarker"
	"github.com/pdiddy/biomarker-engine/internal/store"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score extraction accuracy against a golden dataset",
	Long: `Evaluate compares stored biomarker entities against a golden dataset of
ground-truth records. Each golden record is matched by biomarker name
against the knowledge base; matched pairs are scored for category
accuracy, ontology precision/recall, validation accuracy, and confidence
correlation, producing an overall grade.`,
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	goldenPath, _ := cmd.Flags().GetString("golden")
	if goldenPath == "" {
		goldenPath = viper.GetString("evaluation.golden_path")
	}
	if goldenPath == "" {
		return fmt.Errorf("no golden dataset: provide --golden or set evaluation.golden_path")
	}

	golden, err := accuracy.LoadGolden(goldenPath)
	if err != nil {
		return err
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")

	predictions, matched, err := matchGolden(context.Background(), s, golden, minConfidence)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return fmt.Errorf("no golden records matched the knowledge base: run extract and knowledge store first")
	}

	fmt.Fprintf(os.Stdout, "Matched %d of %d golden record(s)\n\n", len(matched), len(golden))

	metrics, matrix := accuracy.Evaluate(predictions, matched)
	metrics.Summarize().Report(os.Stdout)

	if showMatrix, _ := cmd.Flags().GetBool("matrix"); showMatrix {
		fmt.Fprintln(os.Stdout)
		matrix.Print(os.Stdout)
	}
	return nil
}

// matchGolden looks up each golden record in the knowledge base by
// biomarker name. Unmatched records are reported and skipped so a
// partial extraction run can still be scored.
func matchGolden(ctx context.Context, s *store.Store, golden []accuracy.GoldenRecord, minConfidence float64) ([]biomarker.BiomarkerEntity, []accuracy.GoldenRecord, error) {
	var (
		predictions []biomarker.BiomarkerEntity
		matched     []accuracy.GoldenRecord
	)

	for _, rec := range golden {
		opts := store.QueryOptions{
			Query:         fmt.Sprintf("%q", rec.Name),
			MinConfidence: minConfidence,
		}
		results, err := s.Retrieve(ctx, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("looking up %q: %w", rec.Name, err)
		}

		found := false
		for _, r := range results {
			if strings.EqualFold(r.Entity.Name, rec.Name) {
				predictions = append(predictions, r.Entity)
				matched = append(matched, rec)
				found = true
				break
			}
		}
		if !found {
			fmt.Fprintf(os.Stderr, "Warning: no stored entity for golden record %q\n", rec.Name)
		}
	}

	return predictions, matched, nil
}

func init() {
	evaluateCmd.Flags().String("golden", "", "path to the golden dataset YAML file")
	evaluateCmd.Flags().String("knowledge-dir", "knowledge", "base directory for knowledge (contains extracted/, index/)")
	evaluateCmd.Flags().String("papers-dir", "papers", "base directory for papers (contains metadata/)")
	evaluateCmd.Flags().Int("max-results", 20, "maximum results per golden-record lookup")
	evaluateCmd.Flags().Float64("min-confidence", 0, "minimum extraction confidence for matched entities")
	evaluateCmd.Flags().Bool("matrix", true, "print the category confusion matrix")

	rootCmd.AddCommand(evaluateCmd)
}
