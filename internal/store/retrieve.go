// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
)

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against entity
	// names and findings.
	Query string

	// Category filters by biomarker category.
	Category biomarker.Category

	// ValidatedOnly keeps only entities validated across cohorts.
	ValidatedOnly bool

	// MinConfidence drops entities below this extraction confidence.
	MinConfidence float64

	// MinScore drops entities below this validation score.
	MinScore int

	// PaperID filters by source paper.
	PaperID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == "" && !q.ValidatedOnly &&
		q.MinConfidence == 0 && q.MinScore == 0 && q.PaperID == ""
}

// QueryResult is a stored biomarker entity with its derived score and
// source paper metadata.
type QueryResult struct {
	ID              string                    `json:"id" yaml:"id"`
	Entity          biomarker.BiomarkerEntity `json:"entity" yaml:"entity"`
	ValidationScore int                       `json:"validation_score" yaml:"validation_score"`
	PaperID         string                    `json:"paper_id" yaml:"paper_id"`
	PaperTitle      string                    `json:"paper_title,omitempty" yaml:"paper_title,omitempty"`
}

// Retrieve queries the knowledge base with optional full-text search and
// structured filters. Full-text queries rank by FTS relevance; filter-only
// queries sort by validation score descending, then name.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT e.id, e.entity, e.validation_score, e.paper_id, p.title
			FROM entities_fts
			JOIN entities e ON e.rowid = entities_fts.rowid
			LEFT JOIN papers p ON e.paper_id = p.id
			WHERE entities_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT e.id, e.entity, e.validation_score, e.paper_id, p.title
			FROM entities e
			LEFT JOIN papers p ON e.paper_id = p.id
			WHERE 1=1`)
	}

	if opts.Category != "" {
		qb.WriteString(` AND e.category = ?`)
		args = append(args, string(opts.Category))
	}
	if opts.ValidatedOnly {
		qb.WriteString(` AND e.is_validated = 1`)
	}
	if opts.MinConfidence > 0 {
		qb.WriteString(` AND e.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}
	if opts.MinScore > 0 {
		qb.WriteString(` AND e.validation_score >= ?`)
		args = append(args, opts.MinScore)
	}
	if opts.PaperID != "" {
		qb.WriteString(` AND e.paper_id = ?`)
		args = append(args, opts.PaperID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY entities_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY e.validation_score DESC, e.name`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr         QueryResult
			blob       string
			paperTitle sql.NullString
		)
		if err := rows.Scan(&qr.ID, &blob, &qr.ValidationScore, &qr.PaperID, &paperTitle); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &qr.Entity); err != nil {
			return nil, fmt.Errorf("unmarshaling entity %s: %w", qr.ID, err)
		}
		if paperTitle.Valid {
			qr.PaperTitle = paperTitle.String
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// RelationshipResult is a stored relationship with its source paper.
type RelationshipResult struct {
	ID           string                          `json:"id" yaml:"id"`
	Relationship biomarker.BiomarkerRelationship `json:"relationship" yaml:"relationship"`
	PaperID      string                          `json:"paper_id" yaml:"paper_id"`
}

// Relationships returns the stored relationships touching the named
// biomarker (as subject or object), or all of them when name is empty.
func (s *Store) Relationships(ctx context.Context, name string, maxResults int) ([]RelationshipResult, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	query := `SELECT id, relationship, paper_id FROM relationships`
	var args []any
	if name != "" {
		query += ` WHERE subject = ? OR object = ?`
		args = append(args, name, name)
	}
	query += ` ORDER BY confidence DESC LIMIT ?`
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var results []RelationshipResult
	for rows.Next() {
		var (
			rr   RelationshipResult
			blob string
		)
		if err := rows.Scan(&rr.ID, &blob, &rr.PaperID); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &rr.Relationship); err != nil {
			return nil, fmt.Errorf("unmarshaling relationship %s: %w", rr.ID, err)
		}
		results = append(results, rr)
	}

	return results, rows.Err()
}
