// Package export writes stored citations out to BibTeX files.
package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var (
	// @type{key,
	entryStartRegex = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s]+)\s*,`)
	// doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex records the entries already present in a .bib file.
type BibTeXIndex struct {
	// Keys holds every citation key seen.
	Keys map[string]bool
	// DOIs maps normalized DOI values to their citation key.
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether an entry with the DOI, or failing that the key,
// is already indexed.
func (idx *BibTeXIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[normalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// Add records an entry.
func (idx *BibTeXIndex) Add(key, doi string) {
	idx.Keys[key] = true
	if d := normalizeDOI(doi); d != "" {
		idx.DOIs[d] = key
	}
}

// ParseBibTeXFile indexes the entries of an existing .bib file.
// A missing file yields an empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); m != nil {
			switch strings.ToLower(m[1]) {
			case "comment", "preamble", "string":
				currentKey = ""
			default:
				currentKey = m[2]
				idx.Keys[currentKey] = true
			}
		}

		if m := doiFieldRegex.FindStringSubmatch(line); m != nil && currentKey != "" {
			if doi := normalizeDOI(m[1]); doi != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeDOI strips resolver prefixes and lowercases a DOI.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.ToLower(doi)
}
