package citation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const deepLearning = `@article{lecun2015deep,
  title = {Deep Learning},
  author = {LeCun, Yann and Bengio, Yoshua and Hinton, Geoffrey},
  journal = {Nature},
  year = {2015},
  volume = 521
}`

func TestParse_Article(t *testing.T) {
	got, err := Parse(deepLearning)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Type != "article" {
		t.Errorf("Type = %q, want article", got.Type)
	}
	if got.Key != "lecun2015deep" {
		t.Errorf("Key = %q, want lecun2015deep", got.Key)
	}
	if got.Title != "Deep Learning" {
		t.Errorf("Title = %q, want Deep Learning", got.Title)
	}
	if got.Year != 2015 {
		t.Errorf("Year = %d, want 2015", got.Year)
	}
	if got.Journal != "Nature" {
		t.Errorf("Journal = %q, want Nature", got.Journal)
	}
	wantAuthors := []string{"LeCun, Yann", "Bengio, Yoshua", "Hinton, Geoffrey"}
	if diff := cmp.Diff(wantAuthors, got.Authors); diff != "" {
		t.Errorf("Authors mismatch (-want +got):\n%s", diff)
	}
	if got.Fields["volume"] != "521" {
		t.Errorf("Fields[volume] = %q, want 521", got.Fields["volume"])
	}
}

func TestParse_Defaults(t *testing.T) {
	got, err := Parse(`@misc{note1, title = "Untitled notes"}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Year != 0 {
		t.Errorf("Year = %d, want 0", got.Year)
	}
	if got.Journal != "" {
		t.Errorf("Journal = %q, want empty", got.Journal)
	}
	if got.Authors != nil {
		t.Errorf("Authors = %v, want nil", got.Authors)
	}
	if got.Title != "Untitled notes" {
		t.Errorf("Title = %q, want Untitled notes", got.Title)
	}
}

func TestParse_FieldForms(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantYear  int
	}{
		{
			name:      "nested braces keep inner braces",
			text:      `@article{k, title = {{BERT}: Pre-training of {Deep} Transformers}, year = 2019}`,
			wantTitle: "{BERT}: Pre-training of {Deep} Transformers",
			wantYear:  2019,
		},
		{
			name:      "quoted with braces inside",
			text:      `@article{k, title = "A {"}quoted{"} title", year = "2001"}`,
			wantTitle: `A {"}quoted{"} title`,
			wantYear:  2001,
		},
		{
			name:      "multi-line value collapses whitespace",
			text:      "@article{k,\n  title = {Attention\n     Is All\tYou Need},\n  year={2017}}",
			wantTitle: "Attention Is All You Need",
			wantYear:  2017,
		},
		{
			name:      "non-numeric year",
			text:      `@article{k, title = {T}, year = {in press}}`,
			wantTitle: "T",
			wantYear:  0,
		},
		{
			name:      "uppercase field names and type",
			text:      `@ARTICLE{k, TITLE = {Upper}, Year = {1999}}`,
			wantTitle: "Upper",
			wantYear:  1999,
		},
		{
			name:      "parenthesised entry",
			text:      `@article(k, title = {Parens}, year = 2003)`,
			wantTitle: "Parens",
			wantYear:  2003,
		},
		{
			name:      "concatenation",
			text:      `@article{k, title = "Part one" # { and two}, year = 2010}`,
			wantTitle: "Part one and two",
			wantYear:  2010,
		},
		{
			name:      "trailing comma",
			text:      `@article{k, title = {Trailing}, year = {2020},}`,
			wantTitle: "Trailing",
			wantYear:  2020,
		},
		{
			name:      "malformed segment skipped",
			text:      `@article{k, garbage, title = {Kept}, year = 2021}`,
			wantTitle: "Kept",
			wantYear:  2021,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", got.Year, tt.wantYear)
			}
		})
	}
}

func TestParse_JournalTitleFallback(t *testing.T) {
	got, err := Parse(`@article{k, journaltitle = {Bioinformatics}}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Journal != "Bioinformatics" {
		t.Errorf("Journal = %q, want Bioinformatics", got.Journal)
	}
}

func TestParse_UsesFirstEntry(t *testing.T) {
	text := `@comment{ignored}
@article{first, title = {First}}
@article{second, title = {Second}}`

	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Key != "first" {
		t.Errorf("Key = %q, want first", got.Key)
	}
}

func TestParse_SkipsUnterminatedBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"stray block after entry", "@article{k, title={T}, year={2020}}\n% mail me: someone@host{"},
		{"unterminated second entry", "@article{k, title={T}, year={2020}}\n@article{j, title = {Open"},
		{"unterminated entry before", "@article{j, title = {Open\n@article{k, title={T}, year={2020}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Key != "k" || got.Title != "T" || got.Year != 2020 {
				t.Errorf("Parse() = key %q title %q year %d, want k T 2020", got.Key, got.Title, got.Year)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"plain text", "LeCun et al. Deep learning. Nature 2015."},
		{"unterminated", "@article{k, title = {Open"},
		{"missing key", "@article{, title = {No key}}"},
		{"field in key position", "@article{title={T}, year={2020}}"},
		{"key with space", "@article{my key, title = {T}}"},
		{"only comment", "@comment{nothing here}"},
		{"stray at sign", "mail me at someone@example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, ErrInvalidCitation) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidCitation", tt.text, err)
			}
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		field string
		want  []string
	}{
		{"", nil},
		{"Smith, J.", []string{"Smith, J."}},
		{"  A  and B ", []string{"A", "B"}},
		{"A and  and B", []string{"A", "B"}},
		// Only the literal lowercase separator splits.
		{"Anderson AND Brand", []string{"Anderson AND Brand"}},
		{"Sandra Andrews", []string{"Sandra Andrews"}},
	}

	for _, tt := range tests {
		got := SplitAuthors(tt.field)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitAuthors(%q) mismatch (-want +got):\n%s", tt.field, diff)
		}
	}
}

func TestSplit(t *testing.T) {
	doc := `% exported library
@string{nat = "Nature"}
@article{a, title = {A}}

@book{b,
  title = {B {nested}}
}
@preamble{"\newcommand{\noop}[1]{}"}`

	got, err := Split(doc)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	want := []string{
		"@article{a, title = {A}}",
		"@book{b,\n  title = {B {nested}}\n}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplit_NoEntries(t *testing.T) {
	if _, err := Split("no entries"); !errors.Is(err, ErrInvalidCitation) {
		t.Errorf("Split(no entries) error = %v, want ErrInvalidCitation", err)
	}
}

func TestSplit_UnterminatedEntryStandsAlone(t *testing.T) {
	doc := "@article{a, title = {A}}\n@article{b, title = {B}\n@article{c, title = {C}}\n"

	got, err := Split(doc)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	want := []string{
		"@article{a, title = {A}}",
		"@article{b, title = {B}",
		"@article{c, title = {C}}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Split() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Parse(got[1]); !errors.Is(err, ErrInvalidCitation) {
		t.Errorf("Parse(%q) error = %v, want ErrInvalidCitation", got[1], err)
	}
	for _, i := range []int{0, 2} {
		if _, err := Parse(got[i]); err != nil {
			t.Errorf("Parse(%q) error = %v", got[i], err)
		}
	}
}

func TestEntry_FilePath(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{"absent", "", ""},
		{"plain", "/home/me/papers/a.pdf", "/home/me/papers/a.pdf"},
		{"jabref", ":papers/a.pdf:PDF", "papers/a.pdf"},
		{"jabref with description", "Full Text:papers/a.pdf:application/pdf", "papers/a.pdf"},
		{"multiple files", "/x/a.pdf;/x/b.pdf", "/x/a.pdf"},
		{"windows path in jabref", `:C:\papers\a.pdf:PDF`, `C:\papers\a.pdf`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Fields: map[string]string{}}
			if tt.field != "" {
				e.Fields["file"] = tt.field
			}
			if got := e.FilePath(); got != tt.want {
				t.Errorf("FilePath() = %q, want %q", got, tt.want)
			}
		})
	}
}
