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

	"github.com/pdiddy/biomarker-engine/internal/literature"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search PubMed and preprint servers for biomarker papers",
	Long: `Search queries PubMed and the bioRxiv/medRxiv preprint servers for papers
matching biomarker terms or a free-text query. Results are deduplicated
across sources, ranked by relevance, and saved as paper metadata for the
extract stage.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg := literatureConfig(cmd)
	backends := searchBackends(cfg)
	if len(backends) == 0 {
		return fmt.Errorf("no backends enabled: use --pubmed or --preprints")
	}

	out, err := literature.Search(context.Background(), query, backends, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		saved, err := literature.SavePapers(cfg.PapersDir, out.Papers)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d paper(s) to %s\n", saved, literature.MetadataDir(cfg.PapersDir))
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return literature.FormatJSON(out, os.Stdout)
	}
	literature.FormatTable(out, os.Stdout)
	return nil
}

func queryFromFlags(cmd *cobra.Command) (literature.Query, error) {
	freeText, _ := cmd.Flags().GetString("query")
	terms, _ := cmd.Flags().GetStringSlice("term")
	mesh, _ := cmd.Flags().GetStringSlice("mesh")

	query := literature.Query{
		FreeText:  freeText,
		Terms:     terms,
		MeSHTerms: mesh,
	}

	from, _ := cmd.Flags().GetString("from")
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return literature.Query{}, fmt.Errorf("invalid --from date %q: use YYYY-MM-DD", from)
		}
		query.DateFrom = t
	}
	to, _ := cmd.Flags().GetString("to")
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return literature.Query{}, fmt.Errorf("invalid --to date %q: use YYYY-MM-DD", to)
		}
		query.DateTo = t
	}

	if query.IsEmpty() {
		return literature.Query{}, fmt.Errorf("query is empty: provide --query or --term")
	}
	return query, nil
}

func literatureConfig(cmd *cobra.Command) types.LiteratureConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	daysBack, _ := cmd.Flags().GetInt("days-back")
	enablePubMed, _ := cmd.Flags().GetBool("pubmed")
	enablePreprints, _ := cmd.Flags().GetBool("preprints")

	cfg := types.LiteratureConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "biomarker-engine/" + version,
		},
		MaxResults:       maxResults,
		Email:            secretDefault("pubmed-email", viper.GetString("literature.email")),
		NCBIAPIKey:       secretDefault("ncbi-api-key", viper.GetString("literature.ncbi_api_key")),
		EnablePubMed:     enablePubMed,
		EnablePreprints:  enablePreprints,
		PreprintDaysBack: daysBack,
		PapersDir:        papersDir,
	}

	// NCBI allows 3 requests/s without an API key, 10 with one.
	if cfg.NCBIAPIKey != "" {
		cfg.RequestDelay = 100 * time.Millisecond
	} else {
		cfg.RequestDelay = 334 * time.Millisecond
	}
	return cfg
}

func searchBackends(cfg types.LiteratureConfig) []literature.Backend {
	client := &http.Client{Timeout: cfg.Timeout}

	var backends []literature.Backend
	if cfg.EnablePubMed {
		backends = append(backends, &literature.PubMedBackend{Client: client})
	}
	if cfg.EnablePreprints {
		backends = append(backends,
			&literature.PreprintBackend{Client: client, Server: "biorxiv"},
			&literature.PreprintBackend{Client: client, Server: "medrxiv"},
		)
	}
	return backends
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search query")
	searchCmd.Flags().StringSlice("term", nil, "biomarker term to search for (repeatable, OR-combined)")
	searchCmd.Flags().StringSlice("mesh", nil, "MeSH heading filter for PubMed (repeatable)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	searchCmd.Flags().Int("days-back", 30, "preprint date window when no date range is given")
	searchCmd.Flags().Bool("pubmed", true, "search PubMed")
	searchCmd.Flags().Bool("preprints", true, "search bioRxiv and medRxiv")
	searchCmd.Flags().String("papers-dir", "papers", "base directory for papers (contains metadata/)")
	searchCmd.Flags().Bool("save", true, "save paper metadata for the extract stage")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
