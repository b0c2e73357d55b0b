package importer

import "errors"

// ErrUnknownEntityType is returned when the declared type key is not in
// the registry. This aborts the whole operation before any row runs.
var ErrUnknownEntityType = errors.New("unknown entity type")

// RowErrorKind discriminates the cause of a row-level failure so
// callers and logs can react differently: validation failures are never
// retryable, reference failures clear up once the referenced record
// exists, storage failures are infrastructure.
type RowErrorKind string

const (
	RowErrorValidation RowErrorKind = "validation"
	RowErrorReference  RowErrorKind = "reference"
	RowErrorStorage    RowErrorKind = "storage"
)

// RowError is one row-level failure with its cause attached. For
// reporting it flattens into the shared error string channel.
type RowError struct {
	RowNumber int          `json:"rowNumber"`
	Kind      RowErrorKind `json:"kind"`
	Message   string       `json:"message"`
}

// ReferenceError signals that a structurally valid row points at a
// record that does not exist (client for a policy, policy for a
// commission). It is discovered at reconciliation time, after
// validation has already passed.
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string {
	return e.Message
}
