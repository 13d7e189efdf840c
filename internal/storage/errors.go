package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCitation is returned when byte-identical citation text is already stored.
	ErrDuplicateCitation = errors.New("duplicate citation")

	// ErrPaperNotFound is returned when an operation names a paper id that does not exist.
	ErrPaperNotFound = errors.New("paper not found")

	// ErrSchemaMigration is returned when the startup schema check or upgrade fails.
	ErrSchemaMigration = errors.New("schema migration failed")

	// ErrStorageIO is returned when the database file is inaccessible or a
	// statement or commit fails.
	ErrStorageIO = errors.New("storage i/o failure")
)

// ioError tags err as a storage failure, keeping the driver error inspectable.
func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageIO, err)
}
