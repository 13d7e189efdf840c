package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// canonicalOrder is the display order. Paper ids are kept equal to each
// paper's position in it.
const canonicalOrder = `ORDER BY COALESCE(year, 0) DESC, COALESCE(title, '') ASC, id ASC`

// paperIDColumns lists every column holding a paper id.
var paperIDColumns = []struct{ table, column string }{
	{"papers", "id"},
	{"paper_authors", "paper_id"},
	{"paper_keywords", "paper_id"},
	{"citations", "paper_id"},
}

// renumber maps ids, given in canonical order, onto 1..N.
// Ids that already equal their position are left out of the mapping.
func renumber(ordered []int64) map[int64]int64 {
	mapping := make(map[int64]int64)
	for i, old := range ordered {
		if newID := int64(i + 1); old != newID {
			mapping[old] = newID
		}
	}
	return mapping
}

// compactIDs renumbers every paper so ids are dense and follow the
// canonical order, rewriting all foreign keys in the same transaction.
// It returns the applied old->new mapping.
func compactIDs(ctx context.Context, tx *sql.Tx) (map[int64]int64, error) {
	ordered, err := orderedPaperIDs(ctx, tx)
	if err != nil {
		return nil, err
	}
	mapping := renumber(ordered)

	for _, c := range paperIDColumns {
		if err := remapColumn(ctx, tx, c.table, c.column, mapping); err != nil {
			return nil, err
		}
	}

	if err := resetPaperSequence(ctx, tx); err != nil {
		return nil, err
	}

	return mapping, nil
}

func orderedPaperIDs(ctx context.Context, tx *sql.Tx) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM papers `+canonicalOrder)
	if err != nil {
		return nil, fmt.Errorf("reading paper ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// remapColumn rewrites ids in two passes through negative values so no
// intermediate state collides with an id still in use.
func remapColumn(ctx context.Context, tx *sql.Tx, table, column string, mapping map[int64]int64) error {
	if len(mapping) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table, column, column))
	if err != nil {
		return fmt.Errorf("preparing %s remap: %w", table, err)
	}
	defer stmt.Close()

	for old, newID := range mapping {
		if _, err := stmt.ExecContext(ctx, -newID, old); err != nil {
			return fmt.Errorf("remapping %s.%s %d: %w", table, column, old, err)
		}
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s = -%s WHERE %s < 0", table, column, column, column))
	if err != nil {
		return fmt.Errorf("finalizing %s remap: %w", table, err)
	}
	return nil
}

// resetPaperSequence sets the AUTOINCREMENT counter to max(id) so the next
// insert follows the dense range. Databases whose papers table predates
// AUTOINCREMENT have no sequence row and need nothing.
func resetPaperSequence(ctx context.Context, tx *sql.Tx) error {
	exists, err := tableExists(tx, "sqlite_sequence")
	if err != nil || !exists {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sqlite_sequence
		SET seq = (SELECT COALESCE(MAX(id), 0) FROM papers)
		WHERE name = 'papers'
	`)
	if err != nil {
		return fmt.Errorf("resetting paper sequence: %w", err)
	}
	return nil
}
