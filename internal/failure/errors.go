package failure

import (
	"errors"
	"fmt"
)

// Run failure classes. Every error surfaced by a run matches exactly one of
// ErrConfiguration, ErrIntegration or ErrPersistence via errors.Is.
var (
	// ErrConfiguration indicates a run that cannot start: bad region,
	// missing input, unknown or duplicated conductor.
	ErrConfiguration = errors.New("busgrid: configuration error")

	// ErrIntegration indicates a batch failed inside the integration kernel.
	ErrIntegration = errors.New("busgrid: integration failure")

	// ErrPersistence indicates the result artifact could not be written.
	ErrPersistence = errors.New("busgrid: persistence failure")
)

// Configuration sub-kinds. Each one also matches ErrConfiguration.
var (
	ErrInvalidRegion = &kind{msg: "invalid region"}
	ErrNotFound      = &kind{msg: "conductor not found"}
	ErrAmbiguous     = &kind{msg: "conductor identifier is ambiguous"}
	ErrMissingInput  = &kind{msg: "missing required input"}
)

type kind struct {
	msg string
}

func (k *kind) Error() string { return "busgrid: " + k.msg }

func (k *kind) Unwrap() error { return ErrConfiguration }

// Configf builds a configuration error of the given sub-kind.
func Configf(k error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", k, fmt.Sprintf(format, args...))
}

// BatchError wraps a kernel error with the batch it happened in.
type BatchError struct {
	Batch   int
	Start   int
	End     int
	Wrapped error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d [%d:%d): %v", e.Batch, e.Start, e.End, e.Wrapped)
}

func (e *BatchError) Unwrap() []error {
	return []error{ErrIntegration, e.Wrapped}
}

// PersistError wraps an I/O error with the artifact path.
type PersistError struct {
	Path    string
	Wrapped error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Wrapped)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistence, e.Wrapped}
}
