package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/rpo/internal/citation"
	"github.com/matsen/rpo/internal/format"
	"github.com/matsen/rpo/internal/paper"
	"github.com/matsen/rpo/internal/pdf"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every paper's PDF",
	Long: `Verify that every paper's PDF exists and can be read.

Reports papers without a PDF path, PDFs missing from disk, files that
are not readable PDFs, and PDFs whose printed DOI differs from the doi
field of the stored citation.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	papers, err := db.ListAllPapers()
	if err != nil {
		exitWithError(exitCodeFor(err), "listing papers: %v", err)
	}

	citations, err := db.CitationTexts()
	if err != nil {
		exitWithError(exitCodeFor(err), "reading citations: %v", err)
	}
	textByID := make(map[int64]string, len(citations))
	for _, c := range citations {
		if _, ok := textByID[c.PaperID]; !ok {
			textByID[c.PaperID] = c.Text
		}
	}

	opener := pdf.NewOpener(cfg.PDFDir, cfg.PDFReader)
	issues := []CheckIssue{}
	for _, p := range papers {
		issues = append(issues, checkPaper(p, textByID[p.ID], opener.ResolvePath, pdf.Inspect)...)
	}

	result := CheckResult{Status: "ok", Papers: len(papers), Issues: issues}
	if len(issues) > 0 {
		result.Status = "issues_found"
	}

	if humanOutput {
		printCheckResultHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// checkPaper returns the problems with one paper's PDF.
func checkPaper(p paper.Paper, citationText string, resolve func(string) (string, error), inspect func(string) (pdf.Info, error)) []CheckIssue {
	issue := CheckIssue{ID: p.ID, Title: p.Title, Path: p.FilePath}

	fullPath, err := resolve(p.FilePath)
	switch {
	case errors.Is(err, pdf.ErrNoFile):
		issue.Type = "no_file"
		return []CheckIssue{issue}
	case errors.Is(err, pdf.ErrFileMissing):
		issue.Type = "missing_file"
		return []CheckIssue{issue}
	case err != nil:
		issue.Type = "unreadable_file"
		issue.Error = err.Error()
		return []CheckIssue{issue}
	}
	issue.Path = fullPath

	info, err := inspect(fullPath)
	if err != nil {
		issue.Type = "invalid_pdf"
		issue.Error = err.Error()
		return []CheckIssue{issue}
	}
	logger.Debug("checked PDF", "id", p.ID, "pages", info.Pages, "doi", info.DOI)

	entry, err := citation.Parse(citationText)
	if err != nil {
		return nil
	}
	expected := entry.Fields["doi"]
	if expected != "" && info.DOI != "" && !strings.EqualFold(expected, info.DOI) {
		issue.Type = "doi_mismatch"
		issue.Expected = expected
		issue.Found = info.DOI
		return []CheckIssue{issue}
	}
	return nil
}

func printCheckResultHuman(result CheckResult) {
	if len(result.Issues) == 0 {
		fmt.Printf("All %d paper(s) OK\n", result.Papers)
		return
	}

	fmt.Printf("Checked %d paper(s), found %d issue(s):\n\n", result.Papers, len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Printf("  [%d] %s\n", issue.ID, format.Truncate(issue.Title, ImportTitleMaxLen))
		switch issue.Type {
		case "no_file":
			fmt.Println("      no PDF recorded")
		case "missing_file":
			fmt.Printf("      missing: %s\n", issue.Path)
		case "doi_mismatch":
			fmt.Printf("      DOI mismatch: citation %s, PDF %s\n", issue.Expected, issue.Found)
		default:
			fmt.Printf("      %s: %s\n", strings.ReplaceAll(issue.Type, "_", " "), issue.Error)
		}
	}
}
