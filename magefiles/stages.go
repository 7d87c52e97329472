//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// runCLI executes a subcommand of the built biomarker-engine binary.
func runCLI(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		if err := Build(); err != nil {
			return err
		}
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", binName, args[0], err)
	}
	return nil
}

// Search runs the literature search stage with the configured query.
// Set BIOMARKER_ENGINE_QUERY to override the default aging-biomarker query.
func Search() error {
	query := os.Getenv("BIOMARKER_ENGINE_QUERY")
	if query == "" {
		query = "aging biomarker"
	}
	return runCLI("search", "--query", query)
}

// Extract runs biomarker extraction over all saved papers.
func Extract() error {
	return runCLI("extract")
}

// Index ingests extraction results into the SQLite knowledge base.
func Index() error {
	return runCLI("knowledge", "store")
}

// Evaluate scores the knowledge base against the golden dataset in golden/.
func Evaluate() error {
	return runCLI("evaluate", "--golden", filepath.Join("golden", "biomarkers.yaml"))
}
