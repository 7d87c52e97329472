// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PublicationType classifies a scientific publication.
type PublicationType string

const (
	PubJournalArticle PublicationType = "journal_article"
	PubPreprint       PublicationType = "preprint"
	PubReview         PublicationType = "review"
	PubMetaAnalysis   PublicationType = "meta_analysis"
	PubClinicalTrial  PublicationType = "clinical_trial"
	PubCaseReport     PublicationType = "case_report"
)

// LiteratureSource identifies the database a paper was retrieved from.
type LiteratureSource string

const (
	SourcePubMed  LiteratureSource = "pubmed"
	SourceBioRxiv LiteratureSource = "biorxiv"
	SourceMedRxiv LiteratureSource = "medrxiv"
)

// Author holds author information for a scientific publication.
type Author struct {
	// LastName is the author's family name.
	LastName string `json:"last_name" yaml:"last_name"`

	// FirstName is the author's given name, when the source provides it.
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`

	// Initials are the author's initials as reported by the source.
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`

	// Affiliation is the author's institutional affiliation.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Journal holds journal-level publication metadata.
type Journal struct {
	Name   string `json:"name" yaml:"name"`
	ISSN   string `json:"issn,omitempty" yaml:"issn,omitempty"`
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
}

// Paper holds metadata and abstract text for a retrieved paper. The
// extraction stage consumes the abstract; everything else is provenance.
type Paper struct {
	// ID is a slug derived from the paper identifier (PMID, or DOI suffix
	// for preprints).
	ID string `json:"id" yaml:"id"`

	// PMID is the PubMed identifier, when the paper came from PubMed.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// DOI is the digital object identifier.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Journal is the publishing journal, when known.
	Journal *Journal `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// PublicationType classifies the paper.
	PublicationType PublicationType `json:"publication_type" yaml:"publication_type"`

	// Source identifies which backend provided the paper.
	Source LiteratureSource `json:"source" yaml:"source"`

	// Abstract is the paper abstract. Extraction runs over this text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords are author-provided keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// MeSHTerms are the Medical Subject Headings assigned by the indexer.
	MeSHTerms []string `json:"mesh_terms,omitempty" yaml:"mesh_terms,omitempty"`

	// FullTextURL points at the source record.
	FullTextURL string `json:"full_text_url,omitempty" yaml:"full_text_url,omitempty"`

	// RelevanceScore ranks the paper within a search result set.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// HasAbstract reports whether the paper carries text the extraction
// stage can work with.
func (p *Paper) HasAbstract() bool {
	return len(p.Abstract) > 0
}
