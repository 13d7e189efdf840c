package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/rpo/internal/citation"
	"github.com/matsen/rpo/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importKeywords []string
	importDryRun   bool
)

func init() {
	importCmd.Flags().StringSliceVar(&importKeywords, "keywords", nil, "Keywords added to every imported paper")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would be imported without changing the library")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file.bib>",
	Short: "Import every entry of a BibTeX file",
	Long: `Import every entry of a BibTeX file as a separate paper.

Each entry's text is stored verbatim. The PDF path comes from the entry's
file field (plain or JabRef "description:path:type" form), and its
keywords field is merged with --keywords. Entries already in the
library are skipped.

Examples:
  rpo import library.bib
  rpo import library.bib --keywords thesis --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// importEntry is one parsed entry of an import file.
type importEntry struct {
	text     string
	key      string
	file     string
	keywords []string
	err      error
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	texts, err := citation.Split(string(data))
	if err != nil {
		exitWithError(exitCodeFor(err), "parsing %s: %v", path, err)
	}
	entries := prepareImport(texts, trimKeywords(importKeywords))

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	var result ImportResult
	if importDryRun {
		result = dryRunImport(db, entries)
	} else {
		result = runImportEntries(db, entries)
	}

	if humanOutput {
		printImportResultHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// prepareImport parses each entry for its key, PDF path and keywords.
func prepareImport(texts []string, extraKeywords []string) []importEntry {
	entries := make([]importEntry, len(texts))
	for i, text := range texts {
		e := importEntry{text: text}
		parsed, err := citation.Parse(text)
		if err != nil {
			e.err = err
			entries[i] = e
			continue
		}
		e.key = parsed.Key
		e.file = parsed.FilePath()
		e.keywords = mergeKeywords(splitKeywordField(parsed.Fields["keywords"]), extraKeywords)
		entries[i] = e
	}
	return entries
}

// splitKeywordField splits a citation's keywords field. Exporters separate
// keywords with commas or semicolons.
func splitKeywordField(field string) []string {
	return strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ';'
	})
}

// mergeKeywords combines keyword lists, trimmed, without repeats.
func mergeKeywords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, kw := range trimKeywords(list) {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

func runImportEntries(db *storage.DB, entries []importEntry) ImportResult {
	result := ImportResult{Errors: []ImportError{}}
	for i, e := range entries {
		if e.err != nil {
			result.Errors = append(result.Errors, ImportError{Index: i + 1, Error: e.err.Error()})
			continue
		}

		_, err := db.AddPaper(e.text, e.file, e.keywords)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, storage.ErrDuplicateCitation):
			result.Skipped++
			logger.Debug("skipping duplicate entry", "key", e.key)
		case errors.Is(err, storage.ErrStorageIO):
			exitWithError(ExitError, "importing %s: %v", e.key, err)
		default:
			result.Errors = append(result.Errors, ImportError{Index: i + 1, Key: e.key, Error: err.Error()})
		}
	}
	return result
}

func dryRunImport(db *storage.DB, entries []importEntry) ImportResult {
	stored, err := db.CitationTexts()
	if err != nil {
		exitWithError(exitCodeFor(err), "reading library: %v", err)
	}
	existing := make(map[string]bool, len(stored))
	for _, c := range stored {
		existing[c.Text] = true
	}

	result := ImportResult{Errors: []ImportError{}, DryRun: true}
	for i, e := range entries {
		switch {
		case e.err != nil:
			result.Errors = append(result.Errors, ImportError{Index: i + 1, Error: e.err.Error()})
		case existing[e.text]:
			result.Skipped++
		default:
			existing[e.text] = true
			result.Imported++
		}
	}
	return result
}

func printImportResultHuman(result ImportResult) {
	verb := "Imported"
	if result.DryRun {
		verb = "Would import"
	}
	fmt.Printf("%s %d paper(s), skipped %d duplicate(s)\n", verb, result.Imported, result.Skipped)

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d entr(ies) failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			label := fmt.Sprintf("#%d", e.Index)
			if e.Key != "" {
				label += " " + e.Key
			}
			fmt.Printf("  %s: %s\n", label, e.Error)
		}
	}
}
