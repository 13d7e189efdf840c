package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportTitleMaxLen truncates titles in import and check summaries.
const ImportTitleMaxLen = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AddResult is the response for the add command.
type AddResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
	Title  string `json:"title"`
}

// RemoveResult is the response for the remove command.
type RemoveResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
	Count  int    `json:"count"`
}

// OpenResult is the response for the open command.
type OpenResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
	DryRun   bool          `json:"dry_run,omitempty"`
}

// ImportError describes one entry that could not be imported.
type ImportError struct {
	Index int    `json:"index"`
	Key   string `json:"key,omitempty"`
	Error string `json:"error"`
}

// ExportResult is the response for the export command.
type ExportResult struct {
	Path    string `json:"path"`
	Written int    `json:"written"`
	Skipped int    `json:"skipped"`
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string       `json:"status"`
	Papers int          `json:"papers"`
	Issues []CheckIssue `json:"issues"`
}

// CheckIssue is one problem found by the check command.
type CheckIssue struct {
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	Title    string `json:"title,omitempty"`
	Path     string `json:"path,omitempty"`
	Expected string `json:"expected,omitempty"`
	Found    string `json:"found,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}
