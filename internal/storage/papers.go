package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/rpo/internal/citation"
	"github.com/matsen/rpo/internal/paper"
)

// selectPaperFields contains the standard field list for SELECT queries on papers.
const selectPaperFields = `id, title, year, file_path, journal`

// CitationText pairs a paper id with its stored citation text.
type CitationText struct {
	PaperID int64
	Text    string
}

// AddPaper parses citationText and stores the paper with its authors,
// keywords and citation record, then compacts ids. It returns the id the
// paper holds once compaction is done.
//
// Byte-identical citation text already in the library is rejected with
// ErrDuplicateCitation; unparseable text with citation.ErrInvalidCitation.
// Nothing is written in either case.
func (d *DB) AddPaper(citationText, filePath string, keywords []string) (int64, error) {
	ctx := context.Background()
	var id int64

	err := d.withTx(func(tx *sql.Tx) error {
		existing, found, err := findCitation(tx, citationText)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: already stored as paper %d", ErrDuplicateCitation, existing)
		}

		entry, err := citation.Parse(citationText)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO papers (title, year, file_path, journal) VALUES (?, ?, ?, ?)`,
			entry.Title, entry.Year, filePath, entry.Journal)
		if err != nil {
			return ioError("inserting paper", err)
		}
		inserted, err := res.LastInsertId()
		if err != nil {
			return ioError("reading paper id", err)
		}

		for _, name := range uniqueNonEmpty(entry.Authors) {
			authorID, err := lookupOrInsert(ctx, tx, "authors", "name", name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO paper_authors (paper_id, author_id) VALUES (?, ?)`, inserted, authorID); err != nil {
				return ioError("linking author", err)
			}
		}

		for _, kw := range uniqueNonEmpty(keywords) {
			keywordID, err := lookupOrInsert(ctx, tx, "keywords", "keyword", kw)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO paper_keywords (paper_id, keyword_id) VALUES (?, ?)`, inserted, keywordID); err != nil {
				return ioError("linking keyword", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO citations (paper_id, text) VALUES (?, ?)`, inserted, citationText); err != nil {
			return ioError("inserting citation", err)
		}

		mapping, err := d.compactInTx(ctx, tx)
		if err != nil {
			return err
		}

		id = inserted
		if newID, ok := mapping[inserted]; ok {
			id = newID
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	d.logger.Debug("added paper", "id", id, "file", filePath)
	return id, nil
}

// RemovePaper deletes a paper with its links and citation record, then
// compacts ids so the remaining papers occupy 1..N-1.
// Returns ErrPaperNotFound if id does not exist.
func (d *DB) RemovePaper(id int64) error {
	ctx := context.Background()

	err := d.withTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
		if err != nil {
			return ioError("deleting paper", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ioError("deleting paper", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrPaperNotFound, id)
		}

		for _, table := range []string{"paper_authors", "paper_keywords", "citations"} {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE paper_id = ?", table), id); err != nil {
				return ioError("deleting from "+table, err)
			}
		}

		_, err = d.compactInTx(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	d.logger.Debug("removed paper", "id", id)
	return nil
}

// compactInTx runs the failure hook, then compaction, inside a mutating transaction.
func (d *DB) compactInTx(ctx context.Context, tx *sql.Tx) (map[int64]int64, error) {
	if d.beforeCompact != nil {
		if err := d.beforeCompact(tx); err != nil {
			return nil, err
		}
	}

	mapping, err := compactIDs(ctx, tx)
	if err != nil {
		return nil, ioError("compacting paper ids", err)
	}
	if len(mapping) > 0 {
		d.logger.Debug("compacted paper ids", "remapped", len(mapping))
	}
	return mapping, nil
}

// GetPaperDetails returns the full record for a paper, or nil if no paper has that id.
func (d *DB) GetPaperDetails(id int64) (*paper.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if err != nil {
		return nil, ioError("getting paper", err)
	}
	if p == nil {
		return nil, nil
	}

	if p.Authors, err = d.linkedNames(authorLinks, id); err != nil {
		return nil, err
	}
	if p.Keywords, err = d.linkedNames(keywordLinks, id); err != nil {
		return nil, err
	}

	var text sql.NullString
	err = d.db.QueryRow(`SELECT text FROM citations WHERE paper_id = ? ORDER BY rowid LIMIT 1`, id).Scan(&text)
	if err != nil && err != sql.ErrNoRows {
		return nil, ioError("getting citation", err)
	}
	p.Citation = text.String

	return p, nil
}

// ListAllPapers returns every paper ordered by year descending, then title.
func (d *DB) ListAllPapers() ([]paper.Paper, error) {
	papers, err := d.queryPapers(`SELECT ` + selectPaperFields + ` FROM papers ` + canonicalOrder)
	if err != nil {
		return nil, ioError("listing papers", err)
	}
	if err := d.attachLinks(papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// SearchPapers returns papers whose title, an author name, or a keyword
// contains query, in the same order as ListAllPapers. Matching is a literal
// substring test, case-insensitive for ASCII.
func (d *DB) SearchPapers(query string) ([]paper.Paper, error) {
	pattern := "%" + escapeLike(query) + "%"

	papers, err := d.queryPapers(`
		SELECT `+selectPaperFields+`
		FROM papers p
		WHERE COALESCE(p.title, '') LIKE ? ESCAPE '\'
		   OR EXISTS (
				SELECT 1 FROM paper_authors pa
				JOIN authors a ON a.id = pa.author_id
				WHERE pa.paper_id = p.id AND a.name LIKE ? ESCAPE '\')
		   OR EXISTS (
				SELECT 1 FROM paper_keywords pk
				JOIN keywords k ON k.id = pk.keyword_id
				WHERE pk.paper_id = p.id AND k.keyword LIKE ? ESCAPE '\')
		`+canonicalOrder, pattern, pattern, pattern)
	if err != nil {
		return nil, ioError("searching papers", err)
	}
	if err := d.attachLinks(papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// GetPaperFilePath returns the stored PDF path and whether the paper exists.
func (d *DB) GetPaperFilePath(id int64) (string, bool, error) {
	var path sql.NullString
	err := d.db.QueryRow(`SELECT file_path FROM papers WHERE id = ?`, id).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, ioError("getting file path", err)
	}
	return path.String, true, nil
}

// Count returns the total number of papers.
func (d *DB) Count() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count); err != nil {
		return 0, ioError("counting papers", err)
	}
	return count, nil
}

// CitationTexts returns every stored citation text in paper id order.
func (d *DB) CitationTexts() ([]CitationText, error) {
	rows, err := d.db.Query(`SELECT paper_id, text FROM citations ORDER BY paper_id, rowid`)
	if err != nil {
		return nil, ioError("reading citations", err)
	}
	defer rows.Close()

	var texts []CitationText
	for rows.Next() {
		var c CitationText
		var text sql.NullString
		if err := rows.Scan(&c.PaperID, &text); err != nil {
			return nil, ioError("reading citations", err)
		}
		c.Text = text.String
		texts = append(texts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("reading citations", err)
	}
	return texts, nil
}

// findCitation looks up a paper by exact citation text.
func findCitation(tx *sql.Tx, text string) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(`SELECT paper_id FROM citations WHERE text = ? LIMIT 1`, text).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ioError("checking for duplicate citation", err)
	}
	return id, true, nil
}

// lookupOrInsert returns the id of the row whose column equals value,
// inserting one if none exists. table and column are never user input.
func lookupOrInsert(ctx context.Context, tx *sql.Tx, table, column, value string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE %s = ? ORDER BY id LIMIT 1", table, column), value).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, ioError("looking up "+table, err)
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", table, column), value)
	if err != nil {
		return 0, ioError("inserting into "+table, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, ioError("inserting into "+table, err)
	}
	return id, nil
}

// linkQuery selects (paper_id, name, link order) rows for one link table.
type linkQuery string

const (
	authorLinks linkQuery = `
		SELECT pa.paper_id, a.name, pa.rowid
		FROM paper_authors pa
		JOIN authors a ON a.id = pa.author_id`
	keywordLinks linkQuery = `
		SELECT pk.paper_id, k.keyword, pk.rowid
		FROM paper_keywords pk
		JOIN keywords k ON k.id = pk.keyword_id`
)

// linkedNames returns the distinct names linked to one paper, in link order.
func (d *DB) linkedNames(q linkQuery, paperID int64) ([]string, error) {
	byPaper, err := d.readLinks(string(q)+` WHERE paper_id = ?`, paperID)
	if err != nil {
		return nil, err
	}
	return byPaper[paperID], nil
}

// attachLinks fills Authors and Keywords on each paper.
func (d *DB) attachLinks(papers []paper.Paper) error {
	if len(papers) == 0 {
		return nil
	}

	authors, err := d.readLinks(string(authorLinks))
	if err != nil {
		return err
	}
	keywords, err := d.readLinks(string(keywordLinks))
	if err != nil {
		return err
	}

	for i := range papers {
		papers[i].Authors = authors[papers[i].ID]
		papers[i].Keywords = keywords[papers[i].ID]
	}
	return nil
}

// readLinks runs a link query and groups distinct names by paper id.
// The connection is released before returning.
func (d *DB) readLinks(query string, args ...interface{}) (map[int64][]string, error) {
	rows, err := d.db.Query(query+` ORDER BY 1, 3`, args...)
	if err != nil {
		return nil, ioError("reading links", err)
	}
	defer rows.Close()

	byPaper := make(map[int64][]string)
	seen := make(map[int64]map[string]bool)
	for rows.Next() {
		var paperID, order int64
		var name sql.NullString
		if err := rows.Scan(&paperID, &name, &order); err != nil {
			return nil, ioError("reading links", err)
		}
		if seen[paperID] == nil {
			seen[paperID] = make(map[string]bool)
		}
		if !name.Valid || seen[paperID][name.String] {
			continue
		}
		seen[paperID][name.String] = true
		byPaper[paperID] = append(byPaper[paperID], name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("reading links", err)
	}
	return byPaper, nil
}

// queryPapers reads every row of a papers query. The rows are fully
// consumed so the single connection is free for follow-up queries.
func (d *DB) queryPapers(query string, args ...interface{}) ([]paper.Paper, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var p paper.Paper
	var title, filePath, journal sql.NullString
	var year sql.NullInt64

	err := s.Scan(&p.ID, &title, &year, &filePath, &journal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Databases from before the journal column allowed NULLs everywhere
	p.Title = title.String
	p.Year = int(year.Int64)
	p.FilePath = filePath.String
	p.Journal = journal.String

	return &p, nil
}

// escapeLike escapes LIKE wildcards so query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// uniqueNonEmpty drops empty strings and repeats, keeping first-seen order.
func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
