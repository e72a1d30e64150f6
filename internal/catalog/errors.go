package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownReference is matched (errors.Is) by every *UnknownReferenceError.
var ErrUnknownReference = errors.New("unknown reference")

// UnknownReferenceError reports an id that does not exist in the catalog.
// The catalog is immutable, so retrying the same lookup can never succeed.
type UnknownReferenceError struct {
	Kind string // "option", "category"
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("Unknown %s ID: %s", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrUnknownReference) work on wrapped values.
func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrUnknownReference
}

// DataError is the fatal startup error for a missing, malformed or
// inconsistent catalog. Problems holds every violation found in one pass.
type DataError struct {
	Problems []string
	Err      error
}

func (e *DataError) Error() string {
	if len(e.Problems) == 0 && e.Err != nil {
		return "catalog data error: " + e.Err.Error()
	}
	return "catalog data validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *DataError) Unwrap() error {
	return e.Err
}
