package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiScanPages is how many leading pages Inspect searches for a DOI.
const doiScanPages = 3

// 10.<registrant>/<suffix>
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Info summarizes a PDF file.
type Info struct {
	Pages int    `json:"pages"`
	DOI   string `json:"doi,omitempty"`
}

// Inspect reads the page count of a PDF and the first DOI printed in its
// leading pages. A PDF without a DOI is not an error.
func Inspect(path string) (Info, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("reading PDF %s: %w", path, err)
	}
	defer f.Close()

	info := Info{Pages: r.NumPage()}

	for i := 1; i <= min(doiScanPages, info.Pages); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := findDOI(text); doi != "" {
			info.DOI = doi
			break
		}
	}

	return info, nil
}

// findDOI returns the first plausible DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}
