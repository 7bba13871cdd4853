package indx

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers match with errors.Is.
var (
	// ErrNotFound reports that an entity referenced by key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a name collision, either on disk (rename/move
	// target occupied) or in the store (unique constraint). The attempted
	// change is not applied.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidParameter reports an unsupported parameter combination,
	// rejected before any mutation.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DataIntegrityError reports a violated engine invariant. It indicates a bug
// and is surfaced, never retried.
type DataIntegrityError struct {
	Msg string
}

func (e *DataIntegrityError) Error() string {
	return "data integrity: " + e.Msg
}

// IntegrityErrorf builds a DataIntegrityError with a formatted message.
func IntegrityErrorf(format string, args ...any) error {
	return &DataIntegrityError{Msg: fmt.Sprintf(format, args...)}
}

// OperationError wraps an underlying store failure. Retries are caller
// policy; the engine reports and moves on.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// InitializationError reports a failed migration or connection setup. Fatal
// to startup.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return "initialization: " + e.Err.Error()
}

func (e *InitializationError) Unwrap() error { return e.Err }
