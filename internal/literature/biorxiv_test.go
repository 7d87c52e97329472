// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const biorxivJSON = `{
  "collection": [
    {
      "doi": "10.1101/2024.01.15.575678",
      "title": "Plasma proteomic signatures of biological aging",
      "authors": "Oh, Hamilton; Wyss-Coray, Tony",
      "date": "2024-01-16",
      "version": "1",
      "category": "neuroscience",
      "abstract": "We identify plasma proteins including GDF-15 that track aging."
    },
    {
      "doi": "10.1101/2024.01.20.999999",
      "title": "Unrelated structural biology preprint",
      "authors": "Smith, Jane",
      "date": "2024-01-20",
      "version": "2",
      "category": "biophysics",
      "abstract": "Cryo-EM structure of a membrane channel."
    }
  ]
}`

func biorxivTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))

	old := biorxivAPIBase
	biorxivAPIBase = ts.URL
	t.Cleanup(func() {
		biorxivAPIBase = old
		ts.Close()
	})
	return ts
}

func TestPreprintSearchFiltersByKeyword(t *testing.T) {
	ts := biorxivTestServer(t, biorxivJSON)

	b := &PreprintBackend{Client: ts.Client(), Server: "biorxiv"}
	papers, err := b.Search(context.Background(), Query{Terms: []string{"aging"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers, want 1 (keyword filter)", len(papers))
	}

	p := papers[0]
	if p.DOI != "10.1101/2024.01.15.575678" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.ID != "doi-10-1101-2024-01-15-575678" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.Source != types.SourceBioRxiv {
		t.Errorf("Source = %q", p.Source)
	}
	if p.PublicationType != types.PubPreprint {
		t.Errorf("PublicationType = %q", p.PublicationType)
	}
	if len(p.Authors) != 2 || p.Authors[0].LastName != "Oh" || p.Authors[1].FirstName != "Tony" {
		t.Errorf("Authors = %+v", p.Authors)
	}
	if want := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC); !p.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", p.Date, want)
	}
	if !strings.Contains(p.FullTextURL, "biorxiv.org/content/10.1101") {
		t.Errorf("FullTextURL = %q", p.FullTextURL)
	}
}

func TestPreprintSearchMatchesAbstract(t *testing.T) {
	ts := biorxivTestServer(t, biorxivJSON)

	b := &PreprintBackend{Client: ts.Client(), Server: "biorxiv"}
	// "GDF-15" appears only in the abstract of the first record.
	papers, err := b.Search(context.Background(), Query{Terms: []string{"GDF-15"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Errorf("got %d papers, want 1", len(papers))
	}
}

func TestPreprintSearchRequestPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"collection":[]}`)
	}))
	defer ts.Close()

	old := biorxivAPIBase
	biorxivAPIBase = ts.URL
	defer func() { biorxivAPIBase = old }()

	b := &PreprintBackend{Client: ts.Client(), Server: "medrxiv"}
	_, err := b.Search(context.Background(), Query{
		Terms:    []string{"aging"},
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := "/details/medrxiv/2024-01-01/2024-02-01/0"
	if gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}
}

func TestPreprintSearchMedrxivSource(t *testing.T) {
	ts := biorxivTestServer(t, biorxivJSON)

	b := &PreprintBackend{Client: ts.Client(), Server: "medrxiv"}
	papers, err := b.Search(context.Background(), Query{Terms: []string{"aging"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 || papers[0].Source != types.SourceMedRxiv {
		t.Errorf("papers = %+v, want one medrxiv-sourced paper", papers)
	}
}

func TestPreprintSearchDropsRecordsWithoutDOI(t *testing.T) {
	ts := biorxivTestServer(t, `{"collection":[{"doi":"","title":"aging study","abstract":"aging"}]}`)

	b := &PreprintBackend{Client: ts.Client(), Server: "biorxiv"}
	papers, err := b.Search(context.Background(), Query{Terms: []string{"aging"}}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("got %d papers, want 0", len(papers))
	}
}

func TestPreprintSearchEmptyQuery(t *testing.T) {
	b := &PreprintBackend{Client: http.DefaultClient, Server: "biorxiv"}
	if _, err := b.Search(context.Background(), Query{}, testCfg()); err == nil {
		t.Fatal("Search succeeded with empty query")
	}
}
