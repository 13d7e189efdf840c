// Package paper defines the core domain type for stored research papers.
package paper

// Paper represents a research paper in the library.
type Paper struct {
	// Identity
	ID int64 `json:"id"` // Dense 1..N handle, follows display order

	// Metadata
	Title   string   `json:"title"`
	Year    int      `json:"year"` // 0 if unknown
	Journal string   `json:"journal"`
	Authors []string `json:"authors"`

	// User annotations
	Keywords []string `json:"keywords,omitempty"`

	// File path to the PDF, absolute or relative to the configured pdf dir
	FilePath string `json:"file_path"`

	// Verbatim citation text as supplied at add time (details only)
	Citation string `json:"citation,omitempty"`
}
