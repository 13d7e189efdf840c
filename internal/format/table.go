package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/rpo/internal/paper"
)

// Column widths in terminal cells.
const (
	IDWidth      = 4
	AuthorsWidth = 24
	YearWidth    = 4
	JournalWidth = 20
	TitleWidth   = 50

	columnGap = "  "

	// DetailWrapWidth is the wrap width of free text in the detail view.
	DetailWrapWidth = 60
)

// titleIndent lines continuation rows up under the title column.
var titleIndent = strings.Repeat(" ", IDWidth+AuthorsWidth+YearWidth+JournalWidth+4*len(columnGap))

// PrintPapers writes papers as a fixed-width table. Authors and journal
// are truncated to their column; titles wrap onto continuation lines.
func PrintPapers(w io.Writer, papers []paper.Paper) error {
	header := strings.Join([]string{
		pad("ID", IDWidth),
		pad("Authors", AuthorsWidth),
		pad("Year", YearWidth),
		pad("Journal", JournalWidth),
		"Title",
	}, columnGap)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(titleIndent)+TitleWidth)); err != nil {
		return err
	}

	for _, p := range papers {
		if err := printRow(w, p); err != nil {
			return err
		}
	}
	return nil
}

func printRow(w io.Writer, p paper.Paper) error {
	year := ""
	if p.Year != 0 {
		year = strconv.Itoa(p.Year)
	}

	titleLines := Wrap(p.Title, TitleWidth)
	row := strings.Join([]string{
		pad(strconv.FormatInt(p.ID, 10), IDWidth),
		pad(Truncate(Authors(p.Authors), AuthorsWidth), AuthorsWidth),
		pad(year, YearWidth),
		pad(Truncate(p.Journal, JournalWidth), JournalWidth),
		titleLines[0],
	}, columnGap)

	if _, err := fmt.Fprintln(w, strings.TrimRight(row, " ")); err != nil {
		return err
	}
	for _, line := range titleLines[1:] {
		if _, err := fmt.Fprintln(w, titleIndent+line); err != nil {
			return err
		}
	}
	return nil
}

// PrintDetails writes the labelled detail view of one paper.
func PrintDetails(w io.Writer, p paper.Paper) error {
	const indent = "          "

	var b strings.Builder
	fmt.Fprintf(&b, "[%d]\n", p.ID)
	b.WriteString(strings.Repeat("═", 70))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Title:    %s\n", strings.Join(Wrap(p.Title, DetailWrapWidth), "\n"+indent))
	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "Authors:  %s\n", strings.Join(Wrap(strings.Join(p.Authors, "; "), DetailWrapWidth), "\n"+indent))
	}
	if p.Journal != "" {
		fmt.Fprintf(&b, "Journal:  %s\n", p.Journal)
	}
	if p.Year != 0 {
		fmt.Fprintf(&b, "Year:     %d\n", p.Year)
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	if p.FilePath != "" {
		fmt.Fprintf(&b, "File:     %s\n", p.FilePath)
	}

	if p.Citation != "" {
		b.WriteString("\nCitation:\n")
		for _, line := range strings.Split(strings.TrimRight(p.Citation, "\n"), "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
