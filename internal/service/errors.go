package service

import (
	"errors"
	"fmt"
)

// Common service errors.
var (
	ErrUnauthorized     = errors.New("no authenticated owner")
	ErrDocumentNotFound = errors.New("document not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrEditorNotOpen    = errors.New("document is not open in the editor")
)

// PersistenceError reports a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err is or wraps a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
