package catalog

import (
	"errors"
	"fmt"
)

// ErrConflict marks an insert that violated the store's id uniqueness
// constraint. Unlike a plain miss this signals a programming error and is
// propagated, wrapped in a PersistenceError.
var ErrConflict = errors.New("id already exists")

// PersistenceError is a local-store write or read failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("catalog %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a PersistenceError caused by a
// duplicate explicit identifier.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// NetworkError is a remote-store or order-submission transport failure.
// Any non-2xx status and any transport error collapse into this one kind.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("catalog %s: status %d", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }
