// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns paper abstracts into validated biomarker
// entities and relationships via a language-model backend.
package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
	"github.com/pdiddy/biomarker-engine/internal/literature"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const extractedDir = "extracted"

// defaultWorkers bounds extraction parallelism when the config leaves
// Workers unset.
const defaultWorkers = 4

// Backend abstracts the language-model API so tests can supply a mock.
// Each implementation handles one abstract and returns wire-shaped
// records.
type Backend interface {
	Extract(ctx context.Context, text string) (Response, error)
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of papers processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any papers failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll runs extraction over every paper with metadata under
// cfg.PapersDir and writes one result file per paper to
// cfg.KnowledgeDir/extracted/. Papers whose output is newer than their
// metadata are skipped; papers without an abstract are skipped too.
// Work is spread over cfg.Workers goroutines.
func ExtractAll(ctx context.Context, backend Backend, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.KnowledgeDir, extractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	papers, err := literature.LoadPapers(cfg.PapersDir)
	if err != nil {
		return BatchSummary{}, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(papers) {
		workers = len(papers)
	}

	jobs := make(chan types.Paper)
	var wg sync.WaitGroup
	var mu sync.Mutex // guards summary and w
	var summary BatchSummary

	report := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for paper := range jobs {
				outPath := filepath.Join(outDir, paper.ID+"-biomarkers.yaml")
				metaPath := filepath.Join(literature.MetadataDir(cfg.PapersDir), paper.ID+".yaml")

				switch changed, err := hasChanged(metaPath, outPath); {
				case err != nil:
					report("failed  %s: %v\n", paper.ID, err)
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					continue
				case !changed:
					report("skipped %s\n", paper.ID)
					mu.Lock()
					summary.Skipped++
					mu.Unlock()
					continue
				}

				if !paper.HasAbstract() {
					report("skipped %s (no abstract)\n", paper.ID)
					mu.Lock()
					summary.Skipped++
					mu.Unlock()
					continue
				}

				result, err := ExtractPaper(ctx, backend, &paper, cfg)
				if err != nil {
					report("failed  %s: %v\n", paper.ID, err)
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					continue
				}

				if err := writeResult(outPath, result); err != nil {
					report("failed  %s: write error: %v\n", paper.ID, err)
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					continue
				}

				report("extracted %s (%d entities, %d relationships)\n",
					paper.ID, len(result.Entities), len(result.Relationships))
				mu.Lock()
				summary.Extracted++
				mu.Unlock()
			}
		}()
	}

	for _, paper := range papers {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		case jobs <- paper:
		}
	}
	close(jobs)
	wg.Wait()

	return summary, nil
}

// ExtractPaper extracts biomarkers from a single paper's abstract. Wire
// records that fail validation are recorded in the result's Errors and
// skipped; a malformed record never aborts the paper.
func ExtractPaper(ctx context.Context, backend Backend, paper *types.Paper, cfg types.ExtractionConfig) (*biomarker.BiomarkerExtraction, error) {
	if !paper.HasAbstract() {
		return nil, fmt.Errorf("paper %s has no abstract", paper.ID)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	resp, err := callWithRetry(ctx, backend, paper.Abstract, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("extracting from %s: %w", paper.ID, err)
	}

	result := &biomarker.BiomarkerExtraction{
		DocumentMetadata:    documentMetadata(paper),
		ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		ModelVersion:        cfg.Model,
	}

	for i, rec := range resp.Entities {
		entity, err := rec.Entity()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entity %d (%s): %v", i, rec.Name, err))
			continue
		}
		result.Entities = append(result.Entities, *entity)
	}

	for i, rec := range resp.Relationships {
		rel, err := rec.Relationship()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("relationship %d (%s %s %s): %v",
				i, rec.Subject, rec.Predicate, rec.Object, err))
			continue
		}
		result.Relationships = append(result.Relationships, *rel)
	}

	return result, nil
}

func documentMetadata(paper *types.Paper) map[string]any {
	meta := map[string]any{
		"paper_id": paper.ID,
		"title":    paper.Title,
		"source":   string(paper.Source),
	}
	if paper.PMID != "" {
		meta["pmid"] = paper.PMID
	}
	if paper.DOI != "" {
		meta["doi"] = paper.DOI
	}
	return meta
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, text string, maxRetries int) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Extract(ctx, text)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return Response{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// hasChanged reports whether the metadata file is newer than the output
// file. Returns true if the output does not exist.
func hasChanged(metaPath, outPath string) (bool, error) {
	metaInfo, err := os.Stat(metaPath)
	if err != nil {
		return false, fmt.Errorf("stat metadata %s: %w", metaPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return metaInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals the extraction to a YAML file.
func writeResult(path string, result *biomarker.BiomarkerExtraction) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads one extraction result file.
func ReadResult(path string) (*biomarker.BiomarkerExtraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	var x biomarker.BiomarkerExtraction
	if err := yaml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &x, nil
}
