// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// metadataSubdir is where paper metadata lands under the papers directory.
const metadataSubdir = "metadata"

// MetadataDir returns the metadata directory under papersDir.
func MetadataDir(papersDir string) string {
	return filepath.Join(papersDir, metadataSubdir)
}

// SavePapers writes each paper to papersDir/metadata/<id>.yaml, creating
// the directory as needed. Existing files for the same ID are
// overwritten with the fresher record. Returns the number written.
func SavePapers(papersDir string, papers []types.Paper) (int, error) {
	dir := MetadataDir(papersDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating metadata directory: %w", err)
	}

	written := 0
	for _, p := range papers {
		if p.ID == "" {
			return written, fmt.Errorf("paper %q has no ID", p.Title)
		}
		data, err := yaml.Marshal(&p)
		if err != nil {
			return written, fmt.Errorf("marshaling paper %s: %w", p.ID, err)
		}
		path := filepath.Join(dir, p.ID+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("writing paper %s: %w", p.ID, err)
		}
		written++
	}
	return written, nil
}

// LoadPapers reads every paper metadata file under papersDir/metadata,
// sorted by ID for stable iteration. A missing directory is not an
// error; it yields an empty slice.
func LoadPapers(papersDir string) ([]types.Paper, error) {
	dir := MetadataDir(papersDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata directory: %w", err)
	}

	var papers []types.Paper
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading paper file %s: %w", entry.Name(), err)
		}
		var p types.Paper
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing paper file %s: %w", entry.Name(), err)
		}
		papers = append(papers, p)
	}

	sort.Slice(papers, func(i, j int) bool { return papers[i].ID < papers[j].ID })
	return papers, nil
}

// LoadPaper reads a single paper by ID.
func LoadPaper(papersDir, id string) (*types.Paper, error) {
	path := filepath.Join(MetadataDir(papersDir), id+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paper %s: %w", id, err)
	}
	var p types.Paper
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing paper %s: %w", id, err)
	}
	return &p, nil
}
