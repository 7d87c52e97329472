// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/biomarker-engine/internal/extract"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract biomarker entities and relationships from paper abstracts",
	Long: `Extract reads saved paper metadata and produces typed biomarker entities
and relationships from each abstract using the Anthropic Messages API.
Results are written as YAML under the knowledge directory; papers whose
output is newer than their metadata are skipped.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}

	backend := &extract.ClaudeBackend{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		FewShot: cfg.FewShot,
		Client:  &http.Client{Timeout: 2 * time.Minute},
	}

	summary, err := extract.ExtractAll(context.Background(), backend, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed extraction", summary.Failed)
	}
	return nil
}

func extractionConfig(cmd *cobra.Command) (types.ExtractionConfig, error) {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("extraction.model")
	}
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	apiKey := secretDefault("anthropic-api-key", viper.GetString("extraction.api_key"))
	if apiKey == "" {
		return types.ExtractionConfig{}, fmt.Errorf("no API key: add .secrets/anthropic-api-key or set extraction.api_key")
	}

	papersDir, _ := cmd.Flags().GetString("papers-dir")
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	workers, _ := cmd.Flags().GetInt("workers")
	fewShot, _ := cmd.Flags().GetBool("few-shot")

	return types.ExtractionConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     apiKey,
			MaxRetries: 3,
		},
		PapersDir:    papersDir,
		KnowledgeDir: knowledgeDir,
		Workers:      workers,
		FewShot:      fewShot,
	}, nil
}

func init() {
	extractCmd.Flags().String("model", "", "AI model identifier for extraction")
	extractCmd.Flags().String("papers-dir", "papers", "base directory for papers (contains metadata/)")
	extractCmd.Flags().String("knowledge-dir", "knowledge", "base directory for extraction output (contains extracted/)")
	extractCmd.Flags().Int("workers", 4, "number of papers extracted in parallel")
	extractCmd.Flags().Bool("few-shot", true, "include worked examples in the extraction prompt")

	rootCmd.AddCommand(extractCmd)
}
