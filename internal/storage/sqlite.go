// Package storage persists papers, authors, keywords and citation text in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection that backs the paper library.
// It is not safe for concurrent use; the library has one writer.
type DB struct {
	db     *sql.DB
	logger *slog.Logger

	// beforeCompact runs inside add and remove transactions, after the row
	// changes and before compaction. Tests set it to inject failures.
	beforeCompact func(tx *sql.Tx) error
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for migration and compaction messages.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// OpenDB opens or creates the library database at path and brings its
// schema up to date.
func OpenDB(path string, opts ...Option) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ioError("opening database", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ioError("opening database "+path, err)
	}

	d := &DB{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Close closes the database connection. The DB must not be used afterwards.
func (d *DB) Close() error {
	return d.db.Close()
}

// withTx runs fn inside a transaction. Any error or panic from fn rolls the
// whole transaction back; the error is returned unchanged.
func (d *DB) withTx(fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(context.Background(), nil)
	if err != nil {
		return ioError("beginning transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				d.logger.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return ioError("committing transaction", err)
	}
	return nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// tableExists reports whether a table with the given name exists.
func tableExists(q queryer, name string) (bool, error) {
	var found string
	err := q.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return true, nil
}
