// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package literature queries biomedical literature APIs and returns
// unified, deduplicated paper metadata with abstracts.
package literature

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// Backend searches a single literature source. Each backend (PubMed,
// bioRxiv, medRxiv) implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.LiteratureConfig) ([]types.Paper, error)
}

// Query holds the search parameters.
type Query struct {
	// FreeText is a free-form query passed through to backends that
	// support query syntax, or tokenized for keyword filtering.
	FreeText string

	// Terms are biomarker terms, OR-combined by backends.
	Terms []string

	// MeSHTerms restrict PubMed results to papers indexed under these
	// headings. Backends without MeSH support ignore them.
	MeSHTerms []string

	// DateFrom and DateTo bound the publication date window. Zero values
	// leave the corresponding bound open.
	DateFrom time.Time
	DateTo   time.Time
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return q.FreeText == "" && len(q.Terms) == 0
}

// keywords returns the lowercased match terms for backends that filter
// client-side rather than query server-side.
func (q Query) keywords() []string {
	var kws []string
	if q.FreeText != "" {
		kws = append(kws, strings.ToLower(q.FreeText))
	}
	for _, t := range q.Terms {
		kws = append(kws, strings.ToLower(t))
	}
	return kws
}

// SearchOutput holds the merged results and dedup statistics.
type SearchOutput struct {
	Papers        []types.Paper
	DupsRemoved   int
	BackendErrors []string
}

// Search fans out the query to all backends concurrently, deduplicates
// by identifier and normalized title, ranks by relevance, and returns
// the top MaxResults papers. A failed backend produces a warning on w
// and an entry in BackendErrors; it does not fail the search.
func Search(ctx context.Context, query Query, backends []Backend, cfg types.LiteratureConfig, w io.Writer) (SearchOutput, error) {
	if query.IsEmpty() {
		return SearchOutput{}, fmt.Errorf("query is empty: provide search terms")
	}
	if len(backends) == 0 {
		return SearchOutput{}, fmt.Errorf("no literature backends configured")
	}

	type backendResult struct {
		papers []types.Paper
		err    error
		name   string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			papers, err := b.Search(ctx, query, cfg)
			ch <- backendResult{papers: papers, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Paper
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			backendErrors = append(backendErrors, fmt.Sprintf("%s: %v", br.name, br.err))
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.papers...)
	}

	deduped, removed := deduplicate(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	return SearchOutput{
		Papers:        deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges papers that share a PMID, DOI, or normalized title.
// A preprint later published in a journal typically collides on title.
func deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Paper
	removed := 0

	for _, p := range papers {
		var keys []string
		if p.PMID != "" {
			keys = append(keys, "pmid:"+p.PMID)
		}
		if p.DOI != "" {
			keys = append(keys, "doi:"+strings.ToLower(p.DOI))
		}
		if t := normalizeTitle(p.Title); t != "" {
			keys = append(keys, "title:"+t)
		}

		dup := -1
		for _, key := range keys {
			if idx, ok := seen[key]; ok {
				dup = idx
				break
			}
		}
		if dup >= 0 {
			mergeInto(&deduped[dup], p)
			removed++
			continue
		}

		idx := len(deduped)
		deduped = append(deduped, p)
		for _, key := range keys {
			seen[key] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher
// score. A PubMed record wins over its preprint twin for provenance.
func mergeInto(dst *types.Paper, src types.Paper) {
	if dst.Source != types.SourcePubMed && src.Source == types.SourcePubMed {
		score := dst.RelevanceScore
		abstract := dst.Abstract
		*dst = src
		if src.Abstract == "" {
			dst.Abstract = abstract
		}
		if score > dst.RelevanceScore {
			dst.RelevanceScore = score
		}
		return
	}

	if dst.PMID == "" && src.PMID != "" {
		dst.PMID = src.PMID
	}
	if dst.DOI == "" && src.DOI != "" {
		dst.DOI = src.DOI
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Date.IsZero() && !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if len(dst.MeSHTerms) == 0 && len(src.MeSHTerms) > 0 {
		dst.MeSHTerms = src.MeSHTerms
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of
// the title for dedup matching.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatTable writes the papers as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-8s  %s\n",
		"Rank", "Title", "Authors", "Year", "Source", "Abstract")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range out.Papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if !p.Date.IsZero() {
			year = fmt.Sprintf("%d", p.Date.Year())
		}
		hasAbstract := "no"
		if p.HasAbstract() {
			hasAbstract = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-8s  %s\n",
			i+1, title, formatAuthors(p.Authors), year, p.Source, hasAbstract)
	}

	fmt.Fprintf(w, "\n%d papers", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the papers as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Papers)
}

func formatAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0].LastName, 20)
	default:
		return truncate(authors[0].LastName, 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
