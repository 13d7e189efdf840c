// Package citation parses free-form BibTeX-like citation text into
// structured paper fields.
package citation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCitation is returned when no entry can be extracted from the text.
var ErrInvalidCitation = errors.New("invalid citation")

// AuthorSeparator separates names in a BibTeX author field.
const AuthorSeparator = " and "

// Entry holds the structured fields extracted from a citation entry.
type Entry struct {
	Type    string   // Entry type, lowercased (article, inproceedings, ...)
	Key     string   // Citation key
	Title   string   // Empty if absent
	Year    int      // 0 if absent or non-numeric
	Authors []string // Split on " and ", trimmed
	Journal string   // Empty if absent

	// Fields holds every field by lowercased name, delimiters stripped.
	Fields map[string]string
}

// Parse extracts the first complete entry from citation text. Unterminated
// blocks are passed over. Returns ErrInvalidCitation (wrapped) if the text
// holds no parseable entry.
func Parse(text string) (Entry, error) {
	raws := scan(text, 1)
	for _, r := range raws {
		if r.err == nil {
			return parseEntry(r)
		}
	}
	if len(raws) > 0 {
		return Entry{}, raws[0].err
	}
	return Entry{}, invalid("no entry found")
}

// Split splits a BibTeX document into the verbatim text of each entry.
// @comment, @preamble and @string blocks are skipped. An unterminated block
// is returned as its own text, so parsing it reports the failure for that
// entry alone.
func Split(text string) ([]string, error) {
	raws := scan(text, 0)
	if len(raws) == 0 {
		return nil, invalid("no entry found")
	}

	texts := make([]string, len(raws))
	for i, r := range raws {
		texts[i] = r.text
	}
	return texts, nil
}

// FilePath returns the PDF path recorded in the entry's file field.
// Handles plain paths and the JabRef "description:path:type" form; when
// several files are listed only the first is returned.
func (e Entry) FilePath() string {
	value := e.Fields["file"]
	if value == "" {
		return ""
	}

	first := strings.TrimSpace(strings.Split(value, ";")[0])
	parts := strings.Split(first, ":")
	if len(parts) >= 3 {
		return strings.TrimSpace(strings.Join(parts[1:len(parts)-1], ":"))
	}
	return first
}

func parseEntry(r rawEntry) (Entry, error) {
	key, rest, _ := strings.Cut(r.body, ",")
	key = strings.TrimSpace(key)
	// A first segment holding '=' is a field, not a key.
	if key == "" || strings.ContainsAny(key, "= \t\r\n") {
		return Entry{}, invalid("entry has no citation key")
	}

	entry := Entry{
		Type:   r.kind,
		Key:    key,
		Fields: parseFields(rest),
	}
	entry.Title = entry.Fields["title"]
	entry.Journal = entry.Fields["journal"]
	if entry.Journal == "" {
		entry.Journal = entry.Fields["journaltitle"]
	}
	entry.Year = parseYear(entry.Fields["year"])
	entry.Authors = SplitAuthors(entry.Fields["author"])

	return entry, nil
}

// SplitAuthors splits an author field on the literal " and " separator.
func SplitAuthors(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}

	var names []string
	for _, name := range strings.Split(field, AuthorSeparator) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseYear(s string) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return year
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCitation, reason)
}
