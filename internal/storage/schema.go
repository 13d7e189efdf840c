package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema upgrade step. Step i (0-based) moves the
// database from user_version i to i+1.
type migration struct {
	name  string
	apply func(ctx context.Context, tx *sql.Tx) error
}

// migrations are applied in order; append only, never reorder.
var migrations = []migration{
	{"create base tables", createBaseTables},
	{"add papers.journal", addJournalColumn},
	{"move bibtex_entries into citations", moveLegacyCitations},
	{"create lookup indexes", createIndexes},
	{"compact paper ids", func(ctx context.Context, tx *sql.Tx) error {
		_, err := compactIDs(ctx, tx)
		return err
	}},
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

// migrate applies every migration the database has not seen yet, each in
// its own transaction.
func (d *DB) migrate(ctx context.Context) error {
	version, err := storedSchemaVersion(ctx, d.db)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaMigration, err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: database schema version %d is newer than supported version %d",
			ErrSchemaMigration, version, SchemaVersion)
	}

	for i := version; i < SchemaVersion; i++ {
		m := migrations[i]
		err := d.withTx(func(tx *sql.Tx) error {
			if err := m.apply(ctx, tx); err != nil {
				return err
			}
			// PRAGMA does not accept bound parameters
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSchemaMigration, m.name, err)
		}
		d.logger.Debug("applied schema migration", "version", i+1, "name", m.name)
	}

	return nil
}

// storedSchemaVersion reads the current SQLite PRAGMA user_version.
func storedSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return version, nil
}

func createBaseTables(ctx context.Context, tx *sql.Tx) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			file_path TEXT NOT NULL DEFAULT '',
			journal TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY,
			name TEXT
		);

		CREATE TABLE IF NOT EXISTS keywords (
			id INTEGER PRIMARY KEY,
			keyword TEXT
		);

		CREATE TABLE IF NOT EXISTS paper_authors (
			paper_id INTEGER,
			author_id INTEGER,
			FOREIGN KEY (paper_id) REFERENCES papers (id),
			FOREIGN KEY (author_id) REFERENCES authors (id)
		);

		CREATE TABLE IF NOT EXISTS paper_keywords (
			paper_id INTEGER,
			keyword_id INTEGER,
			FOREIGN KEY (paper_id) REFERENCES papers (id),
			FOREIGN KEY (keyword_id) REFERENCES keywords (id)
		);

		CREATE TABLE IF NOT EXISTS citations (
			paper_id INTEGER,
			text TEXT,
			FOREIGN KEY (paper_id) REFERENCES papers (id)
		);
	`
	_, err := tx.ExecContext(ctx, schema)
	return err
}

// addJournalColumn upgrades papers tables created before journals were tracked.
func addJournalColumn(ctx context.Context, tx *sql.Tx) error {
	has, err := hasColumn(ctx, tx, "papers", "journal")
	if err != nil || has {
		return err
	}
	_, err = tx.ExecContext(ctx, `ALTER TABLE papers ADD COLUMN journal TEXT NOT NULL DEFAULT ''`)
	return err
}

// moveLegacyCitations copies rows from the old bibtex_entries table into
// citations and drops it.
func moveLegacyCitations(ctx context.Context, tx *sql.Tx) error {
	exists, err := tableExists(tx, "bibtex_entries")
	if err != nil || !exists {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO citations (paper_id, text)
		SELECT b.paper_id, b.bibtex
		FROM bibtex_entries b
		WHERE NOT EXISTS (SELECT 1 FROM citations c WHERE c.paper_id = b.paper_id)
		ORDER BY b.rowid
	`)
	if err != nil {
		return fmt.Errorf("copying bibtex_entries: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE bibtex_entries`)
	return err
}

func createIndexes(ctx context.Context, tx *sql.Tx) error {
	schema := `
		CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name);
		CREATE INDEX IF NOT EXISTS idx_keywords_keyword ON keywords(keyword);
		CREATE INDEX IF NOT EXISTS idx_paper_authors_paper ON paper_authors(paper_id);
		CREATE INDEX IF NOT EXISTS idx_paper_keywords_paper ON paper_keywords(paper_id);
		CREATE INDEX IF NOT EXISTS idx_citations_paper ON citations(paper_id);
		CREATE INDEX IF NOT EXISTS idx_citations_text ON citations(text);
	`
	_, err := tx.ExecContext(ctx, schema)
	return err
}

// hasColumn probes PRAGMA table_info for a column.
func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			found = true
		}
	}
	return found, rows.Err()
}
