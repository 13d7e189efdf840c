package main

import (
	"fmt"

	"github.com/matsen/rpo/internal/export"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.bib>",
	Short: "Append stored citations to a BibTeX file",
	Long: `Append the stored citation text of every paper to a BibTeX file.

Entries whose DOI or key already appears in the file are skipped, so
exporting twice is safe. The file is created if it doesn't exist.

Example:
  rpo export ~/refs.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	stored, err := db.CitationTexts()
	if err != nil {
		exitWithError(exitCodeFor(err), "reading citations: %v", err)
	}
	texts := make([]string, 0, len(stored))
	for _, c := range stored {
		texts = append(texts, c.Text)
	}

	written, skipped, err := export.AppendEntries(args[0], texts)
	if err != nil {
		exitWithError(exitCodeFor(err), "exporting: %v", err)
	}

	if humanOutput {
		fmt.Printf("Wrote %d entr(ies) to %s, skipped %d already present\n", written, args[0], skipped)
	} else {
		outputJSON(ExportResult{Path: args[0], Written: written, Skipped: skipped})
	}
	return nil
}
