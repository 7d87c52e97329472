// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/biomarker-engine/internal/httputil"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute
// an httptest server.
var (
	pubmedESearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedEFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// pubmedTool identifies this client to NCBI usage tracking.
const pubmedTool = "biomarker-engine"

// efetchBatchSize is the number of PMIDs fetched per efetch call.
const efetchBatchSize = 100

// PubMedBackend queries the NCBI E-utilities API: esearch for PMIDs,
// then efetch for MEDLINE XML records with abstracts. NCBI allows
// 3 requests/s without an API key, 10 with one.
type PubMedBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search runs esearch then efetch and returns parsed papers. Results
// carry a position-based relevance score reflecting PubMed's own
// relevance ordering.
func (b *PubMedBackend) Search(ctx context.Context, query Query, cfg types.LiteratureConfig) ([]types.Paper, error) {
	pmids, err := b.esearch(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return nil, nil
	}

	var papers []types.Paper
	for i := 0; i < len(pmids); i += efetchBatchSize {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RequestDelay):
			}
		}

		end := i + efetchBatchSize
		if end > len(pmids) {
			end = len(pmids)
		}
		batch, err := b.efetch(ctx, pmids[i:end], cfg)
		if err != nil {
			return nil, err
		}
		papers = append(papers, batch...)
	}

	total := len(papers)
	for i := range papers {
		if total > 1 {
			papers[i].RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			papers[i].RelevanceScore = 1.0
		}
	}
	return papers, nil
}

// esearch returns the PMIDs matching the query in relevance order.
func (b *PubMedBackend) esearch(ctx context.Context, query Query, cfg types.LiteratureConfig) ([]string, error) {
	term := buildPubMedQuery(query)
	if term == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "json")
	params.Set("sort", "relevance")
	params.Set("tool", pubmedTool)
	if cfg.Email != "" {
		params.Set("email", cfg.Email)
	}
	if cfg.NCBIAPIKey != "" {
		params.Set("api_key", cfg.NCBIAPIKey)
	}
	if !query.DateFrom.IsZero() && !query.DateTo.IsZero() {
		params.Set("mindate", query.DateFrom.Format("2006/01/02"))
		params.Set("maxdate", query.DateTo.Format("2006/01/02"))
		params.Set("datetype", "pdat")
	}

	var parsed esearchResponse
	if err := b.getJSON(ctx, pubmedESearchURL+"?"+params.Encode(), cfg, &parsed); err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}
	return parsed.ESearchResult.IDList, nil
}

// efetch retrieves MEDLINE XML for a batch of PMIDs and parses it.
func (b *PubMedBackend) efetch(ctx context.Context, pmids []string, cfg types.LiteratureConfig) ([]types.Paper, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "xml")
	params.Set("tool", pubmedTool)
	if cfg.Email != "" {
		params.Set("email", cfg.Email)
	}
	if cfg.NCBIAPIKey != "" {
		params.Set("api_key", cfg.NCBIAPIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedEFetchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubMed response: %w", err)
	}

	var papers []types.Paper
	for _, article := range set.Articles {
		if p, ok := parsePubMedArticle(article); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

func (b *PubMedBackend) getJSON(ctx context.Context, rawURL string, cfg types.LiteratureConfig, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// buildPubMedQuery constructs the esearch term parameter. Biomarker
// terms are OR-combined over all fields; MeSH terms restrict the result
// to papers indexed under those headings.
func buildPubMedQuery(q Query) string {
	var clauses []string

	if q.FreeText != "" {
		clauses = append(clauses, q.FreeText)
	}
	if len(q.Terms) > 0 {
		quoted := make([]string, len(q.Terms))
		for i, t := range q.Terms {
			quoted[i] = fmt.Sprintf("%q[All Fields]", t)
		}
		clauses = append(clauses, "("+strings.Join(quoted, " OR ")+")")
	}
	if len(q.MeSHTerms) > 0 {
		quoted := make([]string, len(q.MeSHTerms))
		for i, t := range q.MeSHTerms {
			quoted[i] = fmt.Sprintf("%q[MeSH Terms]", t)
		}
		clauses = append(clauses, "("+strings.Join(quoted, " OR ")+")")
	}

	return strings.Join(clauses, " AND ")
}

// MEDLINE XML structures, limited to the fields the pipeline consumes.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation   medlineCitation `xml:"MedlineCitation"`
	PubmedData pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID         string         `xml:"PMID"`
	Article      medlineArticle `xml:"Article"`
	MeshHeadings []meshHeading  `xml:"MeshHeadingList>MeshHeading"`
	Keywords     []string       `xml:"KeywordList>Keyword"`
}

type medlineArticle struct {
	Title            string          `xml:"ArticleTitle"`
	AbstractTexts    []string        `xml:"Abstract>AbstractText"`
	Authors          []medlineAuthor `xml:"AuthorList>Author"`
	Journal          medlineJournal  `xml:"Journal"`
	PublicationTypes []string        `xml:"PublicationTypeList>PublicationType"`
}

type medlineAuthor struct {
	LastName    string `xml:"LastName"`
	ForeName    string `xml:"ForeName"`
	Initials    string `xml:"Initials"`
	Affiliation string `xml:"AffiliationInfo>Affiliation"`
}

type medlineJournal struct {
	Title string       `xml:"Title"`
	ISSN  string       `xml:"ISSN"`
	Issue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	Volume  string     `xml:"Volume"`
	Issue   string     `xml:"Issue"`
	PubDate pubmedDate `xml:"PubDate"`
}

type pubmedDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type meshHeading struct {
	Descriptor string `xml:"DescriptorName"`
}

type pubmedData struct {
	ArticleIDs []articleID `xml:"ArticleIdList>ArticleId"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// parsePubMedArticle converts one MEDLINE record to a Paper. Records
// without a PMID are dropped.
func parsePubMedArticle(a pubmedArticle) (types.Paper, bool) {
	pmid := strings.TrimSpace(a.Citation.PMID)
	if pmid == "" {
		return types.Paper{}, false
	}

	article := a.Citation.Article

	p := types.Paper{
		ID:              "pmid-" + pmid,
		PMID:            pmid,
		Title:           strings.TrimSpace(article.Title),
		Abstract:        strings.TrimSpace(strings.Join(article.AbstractTexts, " ")),
		Source:          types.SourcePubMed,
		PublicationType: classifyPublication(article.PublicationTypes),
		FullTextURL:     "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		Keywords:        a.Citation.Keywords,
	}

	for _, author := range article.Authors {
		if author.LastName == "" {
			continue
		}
		p.Authors = append(p.Authors, types.Author{
			LastName:    author.LastName,
			FirstName:   author.ForeName,
			Initials:    author.Initials,
			Affiliation: author.Affiliation,
		})
	}

	if article.Journal.Title != "" {
		p.Journal = &types.Journal{
			Name:   article.Journal.Title,
			ISSN:   article.Journal.ISSN,
			Volume: article.Journal.Issue.Volume,
			Issue:  article.Journal.Issue.Issue,
		}
	}

	p.Date = parsePubDate(article.Journal.Issue.PubDate)

	for _, mh := range a.Citation.MeshHeadings {
		if mh.Descriptor != "" {
			p.MeSHTerms = append(p.MeSHTerms, mh.Descriptor)
		}
	}

	for _, id := range a.PubmedData.ArticleIDs {
		if id.IDType == "doi" {
			p.DOI = strings.TrimSpace(id.Value)
		}
	}

	return p, true
}

// classifyPublication maps MEDLINE publication types onto the pipeline's
// coarser classification. Order matters: the first match wins.
func classifyPublication(pubTypes []string) types.PublicationType {
	for _, pt := range pubTypes {
		lower := strings.ToLower(pt)
		switch {
		case strings.Contains(lower, "meta-analysis"):
			return types.PubMetaAnalysis
		case strings.Contains(lower, "review"):
			return types.PubReview
		case strings.Contains(lower, "clinical trial"):
			return types.PubClinicalTrial
		case strings.Contains(lower, "case report"):
			return types.PubCaseReport
		}
	}
	return types.PubJournalArticle
}

// parsePubDate handles both numeric and abbreviated-month forms
// ("2024 Mar 15", "2024 3"). An unparseable date yields the zero time.
func parsePubDate(d pubmedDate) time.Time {
	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil || year == 0 {
		return time.Time{}
	}

	month := time.January
	ms := strings.TrimSpace(d.Month)
	if n, err := strconv.Atoi(ms); err == nil && n >= 1 && n <= 12 {
		month = time.Month(n)
	} else if ms != "" {
		if t, err := time.Parse("Jan", ms); err == nil {
			month = t.Month()
		}
	}

	day := 1
	if n, err := strconv.Atoi(strings.TrimSpace(d.Day)); err == nil && n >= 1 && n <= 31 {
		day = n
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
