package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy shared by the store, query engine, and
// request boundary. Wrap with fmt.Errorf("...: %w", err) and test with
// errors.Is.
var (
	// ErrNotFound is returned when a query or delete target is absent.
	// Distinct from "found with an empty result".
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for empty search queries and missing
	// required identity fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned by strict create when an entity with the
	// same identity already exists.
	ErrConflict = errors.New("already exists")

	// ErrStorageUnavailable is returned when the backing graph store is
	// unreachable. The core does not retry; retry policy belongs to the
	// caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// PartialImportError reports a bulk import where one batch failed after
// earlier batches were committed. The committed batches retain their
// effects.
type PartialImportError struct {
	CommittedBatches int
	FailedBatch      int // 1-based index of the batch that failed
	Err              error
}

func (e *PartialImportError) Error() string {
	return fmt.Sprintf("bulk import failed at batch %d (%d batches committed): %v",
		e.FailedBatch, e.CommittedBatches, e.Err)
}

func (e *PartialImportError) Unwrap() error { return e.Err }
