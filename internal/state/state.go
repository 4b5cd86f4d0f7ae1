// Package state records what a run decided and what every task did, and
// writes it as a JSON report.
package state

import (
	"encoding/json" // For JSON encoding and decoding of the report file
	"fmt"
	"os" // For file system operations like reading and writing files

	"github.com/hashicorp/go-multierror"

	"laravel-assembler/internal/logger" // Custom logger package for logging errors and debug info
	"laravel-assembler/internal/tasks"
)

// RepositoryState tracks how far the git bootstrap got. Later steps are gated on it:
// nothing is pushed unless the GitHub repository was created.
type RepositoryState struct {
	Initialized     bool   `json:"initialized"`       // A local repository with an initial commit exists
	CreatedOnGitHub bool   `json:"created_on_github"` // The GitHub repository was created and pushed to
	Branch          string `json:"branch,omitempty"`  // Branch the commits went to
}

// Report holds the full outcome of a run.
type Report struct {
	Project    string          `json:"project"`    // Absolute path of the generated project
	Selections map[string]bool `json:"selections"` // Feature key -> answer given at the prompt
	Repository RepositoryState `json:"repository"` // Git and GitHub bootstrap progress
	Results    []tasks.Result  `json:"results"`    // Every task in the order it ran
}

// NewReport returns an empty report for the project at path.
func NewReport(path string, selections map[string]bool) *Report {
	if selections == nil {
		selections = make(map[string]bool)
	}
	return &Report{
		Project:    path,
		Selections: selections,
		Results:    []tasks.Result{},
	}
}

// Add records a task result and returns it, so callers can branch on it inline.
func (r *Report) Add(res tasks.Result) tasks.Result {
	r.Results = append(r.Results, res)
	return res
}

// Failed returns the tasks that ran and did not succeed.
func (r *Report) Failed() []tasks.Result {
	var failed []tasks.Result
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err folds every failed task into one error, or returns nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, res := range r.Failed() {
		result = multierror.Append(result, fmt.Errorf("%s: %s", res.Label, res.Message))
	}
	return result.ErrorOrNil()
}

// Summary returns counts of succeeded, skipped and failed tasks.
func (r *Report) Summary() (succeeded, skipped, failed int) {
	for _, res := range r.Results {
		switch {
		case res.Skipped:
			skipped++
		case res.Succeeded:
			succeeded++
		default:
			failed++
		}
	}
	return succeeded, skipped, failed
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	// Read entire report JSON file into memory
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}

	var r Report
	if err := json.Unmarshal(file, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}

	// Ensure the map is initialized if JSON contained null
	if r.Selections == nil {
		r.Selections = make(map[string]bool)
	}
	return &r, nil
}

// Save writes the report to path as indented JSON.
func (r *Report) Save(path string) error {
	// Marshal the Report struct into indented JSON bytes
	file, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal report: %v\n", err)
		return fmt.Errorf("marshalling report: %w", err)
	}

	logger.Debug("[DEBUG] Writing report to %s\n", path)

	// Write the JSON bytes to the file with mode 0644 (read/write owner, read others)
	if err := os.WriteFile(path, file, 0644); err != nil {
		logger.Error("[ERROR] Failed to write report file %s: %v\n", path, err)
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
