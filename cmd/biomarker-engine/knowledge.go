// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
	"github.com/pdiddy/biomarker-engine/internal/store"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the biomarker knowledge base (store, retrieve, export)",
	Long: `Knowledge manages a local SQLite knowledge base built from extracted
biomarker entities. Use subcommands to index extractions, query them,
list relationships, or export.`,
}

// --- store subcommand ---

var knowledgeStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest extraction results into the knowledge base",
	Long: `Store reads extraction YAML files from knowledge/extracted/, ingests
them into a SQLite database with FTS5 indexing, and refreshes the export
file. Unchanged extractions are skipped on subsequent runs.`,
	RunE: runKnowledgeStore,
}

func runKnowledgeStore(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d extraction(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the knowledge base with full-text search and filters",
	Long: `Retrieve searches stored biomarker entities using FTS5 full-text search
over names and findings, structured filters (category, validation status,
confidence, source paper), or a combination of both. Filter-only queries
rank by validation score.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --category, --validated, --min-confidence, --min-score, or --paper")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-14s  %-5s  %-5s  %s\n",
		"Rank", "Biomarker", "Category", "Score", "Conf", "Finding")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		name := r.Entity.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		finding := r.Entity.Finding
		if len(finding) > 50 {
			finding = finding[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-14s  %-5d  %-5.2f  %s\n",
			i+1, name, r.Entity.Category, r.ValidationScore, r.Entity.Confidence, finding)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- relationships subcommand ---

var knowledgeRelationshipsCmd = &cobra.Command{
	Use:   "relationships [biomarker]",
	Short: "List stored relationships touching a biomarker",
	Long: `Relationships lists stored subject-predicate-object relationships where
the named biomarker appears as subject or object, ordered by confidence.
With no argument it lists all stored relationships.`,
	RunE: runKnowledgeRelationships,
}

func runKnowledgeRelationships(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var name string
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	results, err := s.Relationships(context.Background(), name, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No relationships found.")
		return nil
	}
	for _, r := range results {
		rel := r.Relationship
		fmt.Fprintf(os.Stdout, "%s --%s--> %s  (conf %.2f, %s)\n",
			rel.Subject, rel.Predicate, rel.Object, rel.Confidence, r.PaperID)
	}
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML, JSON, or CSV",
	Long: `Export writes the full knowledge base (or a filtered subset) to
knowledge/index/export.yaml, export.json, or export.csv. Supports the
same filter flags as retrieve for partial exports.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.yaml")
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.json")
	case "csv":
		if err := s.ExportCSV(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.csv")
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or csv", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	if knowledgeDir == "" {
		knowledgeDir = "knowledge"
	}
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	if papersDir == "" {
		papersDir = "papers"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.StoreConfig{
		KnowledgeDir: knowledgeDir,
		MaxResults:   maxResults,
	}
	return store.NewStore(cfg, papersDir)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (store.QueryOptions, error) {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	categoryText, _ := cmd.Flags().GetString("category")
	var category biomarker.Category
	if categoryText != "" {
		c, ok := biomarker.ParseCategory(categoryText)
		if !ok {
			return store.QueryOptions{}, fmt.Errorf("unknown category %q", categoryText)
		}
		category = c
	}

	validatedOnly, _ := cmd.Flags().GetBool("validated")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	minScore, _ := cmd.Flags().GetInt("min-score")
	paperID, _ := cmd.Flags().GetString("paper")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:         queryText,
		Category:      category,
		ValidatedOnly: validatedOnly,
		MinConfidence: minConfidence,
		MinScore:      minScore,
		PaperID:       paperID,
		MaxResults:    limit,
	}, nil
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query over names and findings")
	cmd.Flags().String("category", "", "filter by biomarker category")
	cmd.Flags().Bool("validated", false, "keep only cross-cohort validated biomarkers")
	cmd.Flags().Float64("min-confidence", 0, "minimum extraction confidence")
	cmd.Flags().Int("min-score", 0, "minimum validation score")
	cmd.Flags().String("paper", "", "filter by source paper ID")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	knowledgeCmd.PersistentFlags().String("knowledge-dir", "knowledge", "base directory for knowledge (contains extracted/, index/)")
	knowledgeCmd.PersistentFlags().String("papers-dir", "papers", "base directory for papers (contains metadata/)")
	knowledgeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	addQueryFlags(knowledgeRetrieveCmd)
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Relationships flags.
	knowledgeRelationshipsCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeRelationshipsCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	addQueryFlags(knowledgeExportCmd)
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or csv")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeStoreCmd)
	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgeRelationshipsCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
