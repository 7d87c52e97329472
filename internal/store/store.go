// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted biomarker entities and relationships
// in SQLite and builds a full-text retrieval index over findings.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
	"github.com/pdiddy/biomarker-engine/internal/literature"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "biomarkers.db"
)

// Store manages the biomarker knowledge base SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	papersDir    string
	maxResults   int
}

// NewStore opens or creates the SQLite database at
// knowledgeDir/index/biomarkers.db, creating the schema if needed.
func NewStore(cfg types.StoreConfig, papersDir string) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		papersDir:    papersDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			pmid TEXT,
			doi TEXT,
			title TEXT,
			authors TEXT,
			date TEXT,
			source TEXT,
			abstract TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			finding TEXT NOT NULL,
			confidence REAL NOT NULL,
			validation_score INTEGER NOT NULL,
			is_validated INTEGER NOT NULL,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			entity TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_paper_id ON entities(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_category ON entities(category)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			confidence REAL NOT NULL,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			relationship TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_paper_id ON relationships(paper_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			paper_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over name and finding, with sync triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entities_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE entities_fts USING fts5(name, finding, content=entities, content_rowid=rowid)`,
			`CREATE TRIGGER entities_ai AFTER INSERT ON entities BEGIN
				INSERT INTO entities_fts(rowid, name, finding) VALUES (new.rowid, new.name, new.finding);
			END`,
			`CREATE TRIGGER entities_ad AFTER DELETE ON entities BEGIN
				INSERT INTO entities_fts(entities_fts, rowid, name, finding) VALUES('delete', old.rowid, old.name, old.finding);
			END`,
			`CREATE TRIGGER entities_au AFTER UPDATE ON entities BEGIN
				INSERT INTO entities_fts(entities_fts, rowid, name, finding) VALUES('delete', old.rowid, old.name, old.finding);
				INSERT INTO entities_fts(rowid, name, finding) VALUES (new.rowid, new.name, new.finding);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction result files from knowledgeDir/extracted/ and
// populates the database. New, changed, and unchanged files are detected
// by mod time for incremental updates.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.knowledgeDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-biomarkers.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		paperID := strings.TrimSuffix(entry.Name(), "-biomarkers.yaml")
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE paper_id = ?`, paperID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", paperID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		var result biomarker.BiomarkerExtraction
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		paper, _ := literature.LoadPaper(s.papersDir, paperID)

		if err := s.ingestExtraction(ctx, paperID, &result, paper, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d entities)\n", paperID, len(result.Entities))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d entities)\n", paperID, len(result.Entities))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Refresh export.yaml after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestExtraction(ctx context.Context, paperID string, result *biomarker.BiomarkerExtraction, paper *types.Paper, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old rows if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE paper_id = ?`, paperID); err != nil {
			return fmt.Errorf("deleting old entities: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE paper_id = ?`, paperID); err != nil {
			return fmt.Errorf("deleting old relationships: %w", err)
		}
	}

	if paper != nil {
		authorsJSON, _ := json.Marshal(paper.Authors)
		dateStr := ""
		if !paper.Date.IsZero() {
			dateStr = paper.Date.Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO papers (id, pmid, doi, title, authors, date, source, abstract)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				pmid=excluded.pmid, doi=excluded.doi, title=excluded.title,
				authors=excluded.authors, date=excluded.date,
				source=excluded.source, abstract=excluded.abstract`,
			paper.ID, paper.PMID, paper.DOI, paper.Title, string(authorsJSON),
			dateStr, string(paper.Source), paper.Abstract,
		)
		if err != nil {
			return fmt.Errorf("upserting paper: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO papers (id) VALUES (?)`, paperID); err != nil {
			return fmt.Errorf("inserting paper stub: %w", err)
		}
	}

	entityStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entities
			(id, name, category, finding, confidence, validation_score, is_validated, paper_id, entity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entity insert: %w", err)
	}
	defer entityStmt.Close()

	for _, e := range result.Entities {
		blob, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling entity %s: %w", e.Name, err)
		}
		validated := 0
		if e.IsValidated() {
			validated = 1
		}
		_, err = entityStmt.ExecContext(ctx,
			stableID(paperID, e.Name, e.Finding),
			e.Name, string(e.Category), e.Finding, e.Confidence,
			e.ValidationScore(), validated, paperID, string(blob),
		)
		if err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.Name, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO relationships
			(id, subject, predicate, object, confidence, paper_id, relationship)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing relationship insert: %w", err)
	}
	defer relStmt.Close()

	for _, r := range result.Relationships {
		blob, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling relationship %s: %w", r.Subject, err)
		}
		_, err = relStmt.ExecContext(ctx,
			stableID(paperID, r.Subject, string(r.Predicate)+r.Object),
			r.Subject, string(r.Predicate), r.Object, r.Confidence, paperID, string(blob),
		)
		if err != nil {
			return fmt.Errorf("inserting relationship %s: %w", r.Subject, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (paper_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		paperID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// stableID generates a deterministic row ID: the first 12 hex characters
// of SHA-256 over the identifying fields.
func stableID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
