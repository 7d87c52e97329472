// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

func testCfg() types.LiteratureConfig {
	return types.LiteratureConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "biomarker-engine-test/0.1"},
		MaxResults: 20,
		Email:      "dev@example.com",
	}
}

const efetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38011223</PMID>
      <Article>
        <Journal>
          <ISSN>1474-9726</ISSN>
          <Title>Aging Cell</Title>
          <JournalIssue>
            <Volume>23</Volume>
            <Issue>2</Issue>
            <PubDate><Year>2024</Year><Month>Feb</Month><Day>15</Day></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>GDF-15 as a biomarker of biological aging</ArticleTitle>
        <Abstract>
          <AbstractText>Background text.</AbstractText>
          <AbstractText>GDF-15 levels predicted mortality (p=0.001).</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Tanaka</LastName>
            <ForeName>Toshiko</ForeName>
            <Initials>T</Initials>
          </Author>
          <Author>
            <LastName>Ferrucci</LastName>
            <ForeName>Luigi</ForeName>
            <Initials>L</Initials>
          </Author>
        </AuthorList>
        <PublicationTypeList>
          <PublicationType>Journal Article</PublicationType>
          <PublicationType>Meta-Analysis</PublicationType>
        </PublicationTypeList>
      </Article>
      <MeshHeadingList>
        <MeshHeading><DescriptorName>Aging</DescriptorName></MeshHeading>
        <MeshHeading><DescriptorName>Biomarkers</DescriptorName></MeshHeading>
      </MeshHeadingList>
      <KeywordList><Keyword>GDF-15</Keyword></KeywordList>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">38011223</ArticleId>
        <ArticleId IdType="doi">10.1111/acel.14070</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
</PubmedArticleSet>`

// pubmedTestServer answers esearch with pmids and efetch with xml.
func pubmedTestServer(t *testing.T, pmids string, xml string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"esearchresult":{"idlist":[%s]}}`, pmids)
	})
	mux.HandleFunc("/efetch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, xml)
	})
	ts := httptest.NewServer(mux)

	oldSearch, oldFetch := pubmedESearchURL, pubmedEFetchURL
	pubmedESearchURL = ts.URL + "/esearch"
	pubmedEFetchURL = ts.URL + "/efetch"
	t.Cleanup(func() {
		pubmedESearchURL, pubmedEFetchURL = oldSearch, oldFetch
		ts.Close()
	})
	return ts
}

func TestPubMedSearchParsesRecords(t *testing.T) {
	ts := pubmedTestServer(t, `"38011223"`, efetchXML)

	b := &PubMedBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Terms: []string{"GDF-15"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(papers))
	}

	p := papers[0]
	if p.PMID != "38011223" || p.ID != "pmid-38011223" {
		t.Errorf("identifiers = %q/%q", p.PMID, p.ID)
	}
	if p.DOI != "10.1111/acel.14070" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.Title != "GDF-15 as a biomarker of biological aging" {
		t.Errorf("Title = %q", p.Title)
	}
	if want := "Background text. GDF-15 levels predicted mortality (p=0.001)."; p.Abstract != want {
		t.Errorf("Abstract = %q, want %q", p.Abstract, want)
	}
	if len(p.Authors) != 2 || p.Authors[0].LastName != "Tanaka" || p.Authors[0].Initials != "T" {
		t.Errorf("Authors = %+v", p.Authors)
	}
	if p.Journal == nil || p.Journal.Name != "Aging Cell" || p.Journal.Volume != "23" {
		t.Errorf("Journal = %+v", p.Journal)
	}
	if want := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC); !p.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", p.Date, want)
	}
	if p.PublicationType != types.PubMetaAnalysis {
		t.Errorf("PublicationType = %q, want meta_analysis", p.PublicationType)
	}
	if p.Source != types.SourcePubMed {
		t.Errorf("Source = %q", p.Source)
	}
	if len(p.MeSHTerms) != 2 || p.MeSHTerms[0] != "Aging" {
		t.Errorf("MeSHTerms = %v", p.MeSHTerms)
	}
	if p.RelevanceScore != 1.0 {
		t.Errorf("RelevanceScore = %v, want 1.0 for single result", p.RelevanceScore)
	}
}

func TestPubMedSearchRequestParams(t *testing.T) {
	var searchReq *http.Request
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		searchReq = r.Clone(r.Context())
		fmt.Fprint(w, `{"esearchresult":{"idlist":[]}}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	old := pubmedESearchURL
	pubmedESearchURL = ts.URL + "/esearch"
	defer func() { pubmedESearchURL = old }()

	cfg := testCfg()
	cfg.MaxResults = 50
	cfg.NCBIAPIKey = "nk_test"

	b := &PubMedBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), Query{
		Terms:     []string{"epigenetic clock", "GDF-15"},
		MeSHTerms: []string{"Aging"},
		DateFrom:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}, cfg)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := searchReq.URL.Query()
	if got := q.Get("db"); got != "pubmed" {
		t.Errorf("db = %q", got)
	}
	if got := q.Get("retmax"); got != "50" {
		t.Errorf("retmax = %q, want 50", got)
	}
	if got := q.Get("api_key"); got != "nk_test" {
		t.Errorf("api_key = %q", got)
	}
	if got := q.Get("email"); got != "dev@example.com" {
		t.Errorf("email = %q", got)
	}
	if got := q.Get("mindate"); got != "2020/01/01" {
		t.Errorf("mindate = %q", got)
	}
	if got := q.Get("datetype"); got != "pdat" {
		t.Errorf("datetype = %q", got)
	}
	want := `("epigenetic clock"[All Fields] OR "GDF-15"[All Fields]) AND ("Aging"[MeSH Terms])`
	if got := q.Get("term"); got != want {
		t.Errorf("term = %q, want %q", got, want)
	}
}

func TestPubMedSearchNoResults(t *testing.T) {
	ts := pubmedTestServer(t, ``, efetchXML)

	b := &PubMedBackend{Client: ts.Client()}
	papers, err := b.Search(context.Background(), Query{Terms: []string{"nonexistent"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("got %d papers, want 0", len(papers))
	}
}

func TestPubMedSearchEmptyQuery(t *testing.T) {
	b := &PubMedBackend{Client: http.DefaultClient}
	if _, err := b.Search(context.Background(), Query{}, testCfg()); err == nil {
		t.Fatal("Search succeeded with empty query")
	}
}

func TestClassifyPublication(t *testing.T) {
	tests := []struct {
		pubTypes []string
		want     types.PublicationType
	}{
		{[]string{"Journal Article"}, types.PubJournalArticle},
		{[]string{"Journal Article", "Review"}, types.PubReview},
		{[]string{"Meta-Analysis"}, types.PubMetaAnalysis},
		{[]string{"Randomized Controlled Trial", "Clinical Trial"}, types.PubClinicalTrial},
		{[]string{"Case Reports", "Case Report"}, types.PubCaseReport},
		{nil, types.PubJournalArticle},
	}
	for _, tt := range tests {
		if got := classifyPublication(tt.pubTypes); got != tt.want {
			t.Errorf("classifyPublication(%v) = %q, want %q", tt.pubTypes, got, tt.want)
		}
	}
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		name string
		date pubmedDate
		want time.Time
	}{
		{"full numeric", pubmedDate{Year: "2024", Month: "3", Day: "15"}, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"abbreviated month", pubmedDate{Year: "2024", Month: "Mar", Day: "15"}, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"year only", pubmedDate{Year: "2023"}, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"missing year", pubmedDate{Month: "Jan"}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePubDate(tt.date); !got.Equal(tt.want) {
				t.Errorf("parsePubDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
