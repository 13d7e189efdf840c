package main

import (
	"fmt"

	"github.com/matsen/rpo/internal/pdf"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a paper's PDF in the configured viewer",
	Long: `Open a paper's PDF in the configured viewer.

The viewer is chosen by pdf_reader (system, skim, preview, zathura,
evince, okular). The command returns as soon as the viewer starts.

Example:
  rpo open 3`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	id := mustParseID(args[0])

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	opener := pdf.NewOpener(cfg.PDFDir, cfg.PDFReader)
	path, err := pdf.OpenPaper(db, id, opener.ResolvePath, opener.Open)
	if err != nil {
		exitWithError(exitCodeFor(err), "opening paper %d: %v", id, err)
	}

	if humanOutput {
		fmt.Printf("Opened %s\n", path)
	} else {
		outputJSON(OpenResult{Status: "opened", Path: path})
	}
	return nil
}
