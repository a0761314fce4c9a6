package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConflict reports an insert that would violate a uniqueness rule,
	// such as registering a username that already exists.
	ErrConflict = errors.New("already exists")
	// ErrNotFound reports a lookup or reference to a record that does not exist.
	ErrNotFound = errors.New("not found")
)

// StorageError wraps an unexpected failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// classify maps driver errors onto the repository's error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return &StorageError{Op: op, Err: err}
}
