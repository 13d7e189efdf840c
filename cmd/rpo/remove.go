package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a paper",
	Long: `Remove a paper with its authors links, keywords links and citation.

Papers after the removed one move down by one.

Example:
  rpo remove 3`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0])

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	if err := db.RemovePaper(id); err != nil {
		exitWithError(exitCodeFor(err), "removing paper: %v", err)
	}

	count, err := db.Count()
	if err != nil {
		exitWithError(exitCodeFor(err), "counting papers: %v", err)
	}

	if humanOutput {
		fmt.Printf("Removed paper %d (%d remaining)\n", id, count)
	} else {
		outputJSON(RemoveResult{Status: "removed", ID: id, Count: count})
	}
	return nil
}
