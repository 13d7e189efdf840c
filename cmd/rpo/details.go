package main

import (
	"fmt"
	"os"

	"github.com/matsen/rpo/internal/clipboard"
	"github.com/matsen/rpo/internal/format"
	"github.com/spf13/cobra"
)

var detailsCopy bool

func init() {
	detailsCmd.Flags().BoolVar(&detailsCopy, "copy", false, "Copy the citation text to the clipboard")
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details <id>",
	Short: "Show a single paper",
	Long: `Show every stored field of a paper, including its citation text.

Examples:
  rpo details 3 --human
  rpo details 3 --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runDetails,
}

func runDetails(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0])

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	p, err := db.GetPaperDetails(id)
	if err != nil {
		exitWithError(exitCodeFor(err), "getting paper: %v", err)
	}
	if p == nil {
		exitWithError(ExitNotFound, "no paper with id %d", id)
	}

	if detailsCopy {
		// The copy is best effort; the details are still shown.
		if err := clipboard.Copy(p.Citation); err != nil {
			logger.Warn("copying citation failed", "error", err)
		} else {
			logger.Info("copied citation to clipboard", "id", id)
		}
	}

	if humanOutput {
		if err := format.PrintDetails(os.Stdout, *p); err != nil {
			exitWithError(ExitError, "writing output: %v", err)
		}
	} else {
		if err := outputJSON(p); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
