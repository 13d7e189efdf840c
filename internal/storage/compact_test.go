package storage

import (
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenumber(t *testing.T) {
	tests := []struct {
		name    string
		ordered []int64
		want    map[int64]int64
	}{
		{"empty", nil, map[int64]int64{}},
		{"already dense", []int64{1, 2, 3}, map[int64]int64{}},
		{"gap", []int64{1, 3, 4}, map[int64]int64{3: 2, 4: 3}},
		{"reversed", []int64{3, 2, 1}, map[int64]int64{3: 1, 1: 3}},
		{"swap", []int64{2, 1}, map[int64]int64{2: 1, 1: 2}},
		{"sparse", []int64{10, 5, 20}, map[int64]int64{10: 1, 5: 2, 20: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renumber(tt.ordered)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("renumber(%v) mismatch (-want +got):\n%s", tt.ordered, diff)
			}
		})
	}
}

func TestCompactIDs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Insert directly so ids are sparse and out of canonical order.
	setup := []string{
		`INSERT INTO papers (id, title, year) VALUES (2, 'Second', 2010)`,
		`INSERT INTO papers (id, title, year) VALUES (5, 'First', 2020)`,
		`INSERT INTO papers (id, title, year) VALUES (9, 'Third', 2000)`,
		`INSERT INTO authors (id, name) VALUES (1, 'A'), (2, 'B'), (3, 'C')`,
		`INSERT INTO paper_authors VALUES (2, 2), (5, 1), (9, 3)`,
		`INSERT INTO citations VALUES (2, 'b'), (5, 'a'), (9, 'c')`,
	}
	for _, stmt := range setup {
		if _, err := db.db.Exec(stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}

	var mapping map[int64]int64
	err := db.withTx(func(tx *sql.Tx) error {
		var err error
		mapping, err = compactIDs(t.Context(), tx)
		return err
	})
	if err != nil {
		t.Fatalf("compactIDs() error = %v", err)
	}

	if diff := cmp.Diff(map[int64]int64{5: 1, 9: 3}, mapping); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}

	type link struct {
		PaperID int64
		Title   string
		Author  string
		Text    string
	}
	rows, err := db.db.Query(`
		SELECT p.id, p.title, a.name, c.text
		FROM papers p
		JOIN paper_authors pa ON pa.paper_id = p.id
		JOIN authors a ON a.id = pa.author_id
		JOIN citations c ON c.paper_id = p.id
		ORDER BY p.id`)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	var got []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.PaperID, &l.Title, &l.Author, &l.Text); err != nil {
			t.Fatalf("scan error = %v", err)
		}
		got = append(got, l)
	}
	rows.Close()

	want := []link{
		{1, "First", "A", "a"},
		{2, "Second", "B", "b"},
		{3, "Third", "C", "c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("compacted rows mismatch (-want +got):\n%s", diff)
	}

	var seq int64
	if err := db.db.QueryRow(`SELECT seq FROM sqlite_sequence WHERE name = 'papers'`).Scan(&seq); err != nil {
		t.Fatalf("reading sequence: %v", err)
	}
	if seq != 3 {
		t.Errorf("sqlite_sequence = %d, want 3", seq)
	}
}

func TestCompactIDs_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.withTx(func(tx *sql.Tx) error {
		mapping, err := compactIDs(t.Context(), tx)
		if len(mapping) != 0 {
			t.Errorf("mapping = %v, want empty", mapping)
		}
		return err
	})
	if err != nil {
		t.Fatalf("compactIDs() error = %v", err)
	}
}
