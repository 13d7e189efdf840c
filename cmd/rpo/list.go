package main

import (
	"fmt"
	"os"

	"github.com/matsen/rpo/internal/format"
	"github.com/matsen/rpo/internal/paper"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all papers",
	Long: `List all papers, newest first, then by title.

Examples:
  rpo list
  rpo list --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search papers by title, author or keyword",
	Long: `Search papers whose title, an author name, or a keyword contains the
query. Matching is a plain substring test, case-insensitive for ASCII.

Examples:
  rpo search "deep learning"
  rpo search Hinton --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	papers, err := db.ListAllPapers()
	if err != nil {
		exitWithError(exitCodeFor(err), "listing papers: %v", err)
	}

	printPapers(papers, "No papers in library.")
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	papers, err := db.SearchPapers(args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "searching papers: %v", err)
	}

	printPapers(papers, "No results found.")
	return nil
}

// printPapers writes papers as a table or JSON array.
func printPapers(papers []paper.Paper, empty string) {
	if !humanOutput {
		if papers == nil {
			papers = []paper.Paper{}
		}
		outputJSON(papers)
		return
	}

	if len(papers) == 0 {
		fmt.Println(empty)
		return
	}
	if err := format.PrintPapers(os.Stdout, papers); err != nil {
		exitWithError(ExitError, "writing output: %v", err)
	}
}
