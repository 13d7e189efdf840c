package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addBibtex     string
	addBibtexFile string
	addFile       string
	addKeywords   []string
)

func init() {
	addCmd.Flags().StringVar(&addBibtex, "bibtex", "", "BibTeX entry text")
	addCmd.Flags().StringVar(&addBibtexFile, "bibtex-file", "", "Read the BibTeX entry from a file (- for stdin)")
	addCmd.Flags().StringVar(&addFile, "file", "", "Path to the paper's PDF (relative paths resolve against pdf_dir)")
	addCmd.Flags().StringSliceVar(&addKeywords, "keywords", nil, "Comma-separated keywords")
	addCmd.MarkFlagsMutuallyExclusive("bibtex", "bibtex-file")
	addCmd.MarkFlagsOneRequired("bibtex", "bibtex-file")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a paper from its BibTeX entry",
	Long: `Add a paper from its BibTeX entry.

The citation text is stored verbatim; adding the exact same text twice
is rejected. Title, year, journal and authors are read from the entry.

Examples:
  rpo add --bibtex "@article{lecun2015, title={Deep Learning}, year={2015}}" --file lecun.pdf
  rpo add --bibtex-file entry.bib --file ~/papers/x.pdf --keywords ml,review`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := addBibtex
	if addBibtexFile != "" {
		var err error
		text, err = readCitationFile(addBibtexFile)
		if err != nil {
			exitWithError(ExitError, "reading %s: %v", addBibtexFile, err)
		}
	}

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	id, err := db.AddPaper(text, addFile, trimKeywords(addKeywords))
	if err != nil {
		exitWithError(exitCodeFor(err), "adding paper: %v", err)
	}

	p, err := db.GetPaperDetails(id)
	if err != nil {
		exitWithError(exitCodeFor(err), "reading paper: %v", err)
	}
	title := ""
	if p != nil {
		title = p.Title
	}

	if humanOutput {
		fmt.Printf("Added paper %d: %s\n", id, title)
	} else {
		outputJSON(AddResult{Status: "added", ID: id, Title: title})
	}
	return nil
}

// readCitationFile reads citation text from path, or stdin for "-".
func readCitationFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// trimKeywords trims each keyword and drops empty ones.
func trimKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
