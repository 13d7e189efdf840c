// Package format renders papers for terminal output.
package format

import (
	"strings"

	"github.com/matsen/rpo/internal/citation"
	"github.com/mattn/go-runewidth"
)

// Authors renders an author list for a table cell. More than two names
// collapse to "<first> et al."
func Authors(names []string) string {
	switch {
	case len(names) == 0:
		return ""
	case len(names) > 2:
		return names[0] + " et al."
	default:
		return strings.Join(names, citation.AuthorSeparator)
	}
}

// Truncate shortens s to at most width terminal cells, ending in "..." when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// Wrap breaks text into lines of at most width cells at word boundaries.
// A single word wider than width is split across lines. Always returns at
// least one line.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// A single rune wider than the column
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		if word == "" {
			continue
		}

		w := runewidth.StringWidth(word)
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// pad left-aligns s in a cell of width terminal cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
