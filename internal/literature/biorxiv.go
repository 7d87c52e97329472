// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/biomarker-engine/internal/httputil"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// biorxivAPIBase is the bioRxiv/medRxiv details endpoint. Declared as a
// var so tests can substitute an httptest server.
var biorxivAPIBase = "https://api.biorxiv.org"

// preprintPageSize is the number of records the details endpoint returns
// per cursor page.
const preprintPageSize = 100

// defaultPreprintDaysBack bounds the date window when the query and
// config leave it open. The details API has no keyword search, so the
// window caps how much gets fetched for client-side filtering.
const defaultPreprintDaysBack = 30

// PreprintBackend queries the bioRxiv details API for one server
// (biorxiv or medrxiv). The API only supports date-range listing, so
// the backend fetches the window and filters by keyword locally.
type PreprintBackend struct {
	Client *http.Client

	// Server selects "biorxiv" or "medrxiv".
	Server string
}

// Name returns the backend identifier.
func (b *PreprintBackend) Name() string { return b.Server }

// Search fetches the date window page by page and returns preprints
// whose title or abstract matches any query term.
func (b *PreprintBackend) Search(ctx context.Context, query Query, cfg types.LiteratureConfig) ([]types.Paper, error) {
	keywords := query.keywords()
	if len(keywords) == 0 {
		return nil, fmt.Errorf("empty preprint query")
	}

	from, to := b.window(query, cfg)

	var matched []types.Paper
	for cursor := 0; ; cursor += preprintPageSize {
		if cursor > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RequestDelay):
			}
		}

		page, err := b.fetchPage(ctx, from, to, cursor, cfg)
		if err != nil {
			return nil, err
		}

		for _, rec := range page {
			if !matchesKeywords(rec, keywords) {
				continue
			}
			if p, ok := b.parsePreprint(rec); ok {
				matched = append(matched, p)
			}
		}

		if len(page) < preprintPageSize {
			break
		}
	}

	total := len(matched)
	for i := range matched {
		if total > 1 {
			matched[i].RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			matched[i].RelevanceScore = 1.0
		}
	}
	return matched, nil
}

func (b *PreprintBackend) window(query Query, cfg types.LiteratureConfig) (time.Time, time.Time) {
	if !query.DateFrom.IsZero() && !query.DateTo.IsZero() {
		return query.DateFrom, query.DateTo
	}
	daysBack := cfg.PreprintDaysBack
	if daysBack <= 0 {
		daysBack = defaultPreprintDaysBack
	}
	to := time.Now()
	return to.AddDate(0, 0, -daysBack), to
}

// fetchPage retrieves one cursor page of the details listing.
func (b *PreprintBackend) fetchPage(ctx context.Context, from, to time.Time, cursor int, cfg types.LiteratureConfig) ([]preprintRecord, error) {
	url := fmt.Sprintf("%s/details/%s/%s/%s/%d",
		biorxivAPIBase, b.Server, from.Format("2006-01-02"), to.Format("2006-01-02"), cursor)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s API request: %w", b.Server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned HTTP %d", b.Server, resp.StatusCode)
	}

	var parsed preprintResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", b.Server, err)
	}
	return parsed.Collection, nil
}

// bioRxiv details API structures.
type preprintResponse struct {
	Collection []preprintRecord `json:"collection"`
}

type preprintRecord struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Date     string `json:"date"`
	Version  string `json:"version"`
	Category string `json:"category"`
	Abstract string `json:"abstract"`
}

func matchesKeywords(rec preprintRecord, keywords []string) bool {
	title := strings.ToLower(rec.Title)
	abstract := strings.ToLower(rec.Abstract)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(abstract, kw) {
			return true
		}
	}
	return false
}

// parsePreprint converts one details record to a Paper. Records without
// a DOI or title are dropped.
func (b *PreprintBackend) parsePreprint(rec preprintRecord) (types.Paper, bool) {
	doi := strings.TrimSpace(rec.DOI)
	if doi == "" || strings.TrimSpace(rec.Title) == "" {
		return types.Paper{}, false
	}

	source := types.SourceBioRxiv
	if b.Server == "medrxiv" {
		source = types.SourceMedRxiv
	}

	p := types.Paper{
		ID:              "doi-" + slugifyDOI(doi),
		DOI:             doi,
		Title:           strings.TrimSpace(rec.Title),
		Abstract:        strings.TrimSpace(rec.Abstract),
		Source:          source,
		PublicationType: types.PubPreprint,
		FullTextURL:     fmt.Sprintf("https://www.%s.org/content/%s", b.Server, doi),
	}
	if rec.Category != "" {
		p.Keywords = []string{rec.Category}
	}

	// Authors arrive as "Last, F.; Last, F." strings.
	for _, name := range strings.Split(rec.Authors, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		parts := strings.SplitN(name, ",", 2)
		author := types.Author{LastName: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			author.FirstName = strings.TrimSpace(parts[1])
		}
		p.Authors = append(p.Authors, author)
	}

	if t, err := time.Parse("2006-01-02", rec.Date); err == nil {
		p.Date = t
	}

	return p, true
}

// slugifyDOI turns "10.1101/2024.01.15.575678" into a filesystem-safe
// identifier.
func slugifyDOI(doi string) string {
	r := strings.NewReplacer("/", "-", ".", "-")
	return r.Replace(doi)
}
