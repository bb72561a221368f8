package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed draft or record. It is raised before
// any state changes.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed call into a persistence backend.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Class runs the classifier over the underlying message.
func (e *PersistenceError) Class() PersistenceErrorClass {
	if e.Err == nil {
		return Generic
	}
	return ClassifyPersistenceError(e.Err.Error())
}

// Hint returns a user facing remediation message.
func (e *PersistenceError) Hint() string {
	if e.Class() == LikelySchemaMismatch {
		return "The database schema looks out of date. Run the migrations (or the setup SQL) for this backend and try again."
	}
	return "Could not save your changes. Check the connection to the data store and try again."
}

// NewPersistenceError wraps err unless it already is a PersistenceError.
// ErrNotFound and configuration errors pass through untouched.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var (
		pe *PersistenceError
		ce *ConfigurationError
	)
	if errors.As(err, &pe) || errors.As(err, &ce) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// ConfigurationError means a required endpoint or key is absent or still a
// placeholder. It is a state the process starts in, not a runtime failure.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "configuration required: " + strings.Join(e.Missing, ", ")
}

// ErrorKind is the coarse category of an error returned by the ledger.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindPersistence
	KindConfiguration
	KindNotFound
)

// KindOf inspects the error chain of err.
func KindOf(err error) ErrorKind {
	var (
		ve *ValidationError
		pe *PersistenceError
		ce *ConfigurationError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindConfiguration
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &pe):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// ClassOf classifies err when it carries a PersistenceError, Generic otherwise.
func ClassOf(err error) PersistenceErrorClass {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Class()
	}
	return Generic
}

type PersistenceErrorClass int

const (
	Generic PersistenceErrorClass = iota
	LikelySchemaMismatch
)

func (c PersistenceErrorClass) String() string {
	if c == LikelySchemaMismatch {
		return "schema_mismatch"
	}
	return "generic"
}

var schemaKeywords = []string{
	"column",
	"relation",
	"does not exist",
	"schema",
	"no such table",
	"undefined_column",
	"pgrst204",
}

// ClassifyPersistenceError guesses from a backend message whether the store is
// missing a table or column. It is a keyword heuristic and can be wrong
// both ways.
func ClassifyPersistenceError(message string) PersistenceErrorClass {
	m := strings.ToLower(message)
	for _, k := range schemaKeywords {
		if strings.Contains(m, k) {
			return LikelySchemaMismatch
		}
	}
	return Generic
}
