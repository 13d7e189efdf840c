package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/rpo/internal/citation"
)

// AppendEntries appends citation texts to the .bib file at path, creating
// it if needed. Texts whose DOI or key is already in the file, or earlier
// in texts, are skipped. Texts are written verbatim, one blank line apart.
func AppendEntries(path string, texts []string) (written, skipped int, err error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("indexing %s: %w", path, err)
	}

	var b strings.Builder
	for _, text := range texts {
		entry, err := citation.Parse(text)
		if err != nil {
			return 0, 0, err
		}
		if idx.HasEntry(entry.Key, entry.Fields["doi"]) {
			skipped++
			continue
		}
		idx.Add(entry.Key, entry.Fields["doi"])

		b.WriteString("\n")
		b.WriteString(strings.TrimRight(text, "\n"))
		b.WriteString("\n")
		written++
	}

	if written == 0 {
		return 0, skipped, nil
	}
	if err := appendToFile(path, b.String()); err != nil {
		return 0, 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return written, skipped, nil
}

func appendToFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
