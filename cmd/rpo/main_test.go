package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/rpo/internal/citation"
	"github.com/matsen/rpo/internal/config"
	"github.com/matsen/rpo/internal/paper"
	"github.com/matsen/rpo/internal/pdf"
	"github.com/matsen/rpo/internal/storage"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid citation", fmt.Errorf("adding: %w", citation.ErrInvalidCitation), ExitDataError},
		{"duplicate", fmt.Errorf("adding: %w", storage.ErrDuplicateCitation), ExitDataError},
		{"not found", fmt.Errorf("%w: 9", storage.ErrPaperNotFound), ExitNotFound},
		{"no paper to open", fmt.Errorf("%w: 9", pdf.ErrNoPaper), ExitNotFound},
		{"migration", fmt.Errorf("%w: boom", storage.ErrSchemaMigration), ExitConfigError},
		{"unknown key", fmt.Errorf("%w: color", config.ErrUnknownKey), ExitConfigError},
		{"storage io", fmt.Errorf("x: %w", storage.ErrStorageIO), ExitError},
		{"other", errors.New("something else"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"pdf-dir":    "pdf_dir",
		"pdf_reader": "pdf_reader",
		"db-path":    "db_path",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeKeywords(t *testing.T) {
	got := mergeKeywords([]string{" ml", "nets ", ""}, []string{"ml", "thesis"})
	if diff := cmp.Diff([]string{"ml", "nets", "thesis"}, got); diff != "" {
		t.Errorf("mergeKeywords() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitKeywordField(t *testing.T) {
	tests := []struct {
		field string
		want  []string
	}{
		{"", []string{}},
		{"ml, vision", []string{"ml", " vision"}},
		{"ml; vision;nets", []string{"ml", " vision", "nets"}},
		{"ml, vision; nets", []string{"ml", " vision", " nets"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitKeywordField(tt.field)); diff != "" {
			t.Errorf("splitKeywordField(%q) mismatch (-want +got):\n%s", tt.field, diff)
		}
	}
}

func TestPrepareImport(t *testing.T) {
	texts := []string{
		"@article{a, title = {A}, keywords = {ml, vision}, file = {:pdfs/a.pdf:PDF}}",
		"@article{, title = {No key}}",
		"@article{b, title = {B}}",
		"@article{c, title = {C}, keywords = {ml; graphs}}",
	}

	entries := prepareImport(texts, []string{"thesis"})
	if len(entries) != 4 {
		t.Fatalf("prepareImport() returned %d entries, want 4", len(entries))
	}

	if entries[0].key != "a" || entries[0].file != "pdfs/a.pdf" {
		t.Errorf("entry 0 = key %q file %q", entries[0].key, entries[0].file)
	}
	if diff := cmp.Diff([]string{"ml", "vision", "thesis"}, entries[0].keywords); diff != "" {
		t.Errorf("entry 0 keywords mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(entries[1].err, citation.ErrInvalidCitation) {
		t.Errorf("entry 1 error = %v, want ErrInvalidCitation", entries[1].err)
	}
	if diff := cmp.Diff([]string{"thesis"}, entries[2].keywords); diff != "" {
		t.Errorf("entry 2 keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ml", "graphs", "thesis"}, entries[3].keywords); diff != "" {
		t.Errorf("entry 3 keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestImportEntries(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	existing := "@article{old, title = {Old}, year = {2000}}"
	if _, err := db.AddPaper(existing, "", nil); err != nil {
		t.Fatalf("AddPaper() error = %v", err)
	}

	entries := prepareImport([]string{
		existing,
		"@article{new, title = {New}, year = {2020}}",
		"@article{, title = {Broken}}",
	}, nil)

	dry := dryRunImport(db, entries)
	if dry.Imported != 1 || dry.Skipped != 1 || len(dry.Errors) != 1 || !dry.DryRun {
		t.Errorf("dryRunImport() = %+v", dry)
	}
	if count, _ := db.Count(); count != 1 {
		t.Errorf("dry run changed library: count = %d, want 1", count)
	}

	result := runImportEntries(db, entries)
	if result.Imported != 1 || result.Skipped != 1 || len(result.Errors) != 1 {
		t.Errorf("runImportEntries() = %+v", result)
	}
	if result.Errors[0].Index != 3 {
		t.Errorf("error index = %d, want 3", result.Errors[0].Index)
	}
	if count, _ := db.Count(); count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestImportEntries_BrokenBlockFailsAlone(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	doc := `@article{a, title = {A}, year = {2001}}
@article{b, title = {Never closed}
@article{c, title = {C}, year = {2002}}
`
	texts, err := citation.Split(doc)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	result := runImportEntries(db, prepareImport(texts, nil))
	if result.Imported != 2 || len(result.Errors) != 1 {
		t.Fatalf("runImportEntries() = %+v, want 2 imported and 1 error", result)
	}
	if result.Errors[0].Index != 2 {
		t.Errorf("error index = %d, want 2", result.Errors[0].Index)
	}
	if !errors.Is(prepareImport(texts[1:2], nil)[0].err, citation.ErrInvalidCitation) {
		t.Errorf("broken entry error is not ErrInvalidCitation")
	}
}

func TestCheckPaper(t *testing.T) {
	resolve := func(stored string) (string, error) {
		switch stored {
		case "":
			return "", pdf.ErrNoFile
		case "gone.pdf":
			return "", fmt.Errorf("%w: /lib/gone.pdf", pdf.ErrFileMissing)
		default:
			return "/lib/" + stored, nil
		}
	}
	inspect := func(path string) (pdf.Info, error) {
		switch path {
		case "/lib/junk.pdf":
			return pdf.Info{}, errors.New("not a PDF file")
		case "/lib/other.pdf":
			return pdf.Info{Pages: 3, DOI: "10.9999/other"}, nil
		default:
			return pdf.Info{Pages: 10, DOI: "10.1038/nature14539"}, nil
		}
	}
	withDOI := "@article{k, title = {T}, doi = {10.1038/NATURE14539}}"

	tests := []struct {
		name     string
		file     string
		text     string
		wantType string
	}{
		{"ok", "good.pdf", withDOI, ""},
		{"ok without doi field", "other.pdf", "@article{k, title = {T}}", ""},
		{"no file", "", withDOI, "no_file"},
		{"missing", "gone.pdf", withDOI, "missing_file"},
		{"invalid pdf", "junk.pdf", withDOI, "invalid_pdf"},
		{"doi mismatch", "other.pdf", withDOI, "doi_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paper.Paper{ID: 1, Title: "T", FilePath: tt.file}
			issues := checkPaper(p, tt.text, resolve, inspect)

			if tt.wantType == "" {
				if len(issues) != 0 {
					t.Errorf("checkPaper() = %+v, want no issues", issues)
				}
				return
			}
			if len(issues) != 1 || issues[0].Type != tt.wantType {
				t.Errorf("checkPaper() = %+v, want one %s issue", issues, tt.wantType)
			}
		})
	}
}
