package allocation

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSlurmNotFound indicates the salloc binary was not found
	ErrSlurmNotFound = errors.New("slurm salloc binary not found in PATH")

	// ErrSlurmNotAvailable indicates Slurm tooling is not usable on this system
	ErrSlurmNotAvailable = errors.New("slurm is not available on this system")

	// ErrEmptyAllocationID indicates an operation was given an empty allocation ID
	ErrEmptyAllocationID = errors.New("allocation ID must not be empty")
)

// InvocationError represents a failure to start an external scheduler command.
// Exit codes and timeouts are not invocation errors; they are reported through
// ProcResult so the lifecycle manager can classify them.
type InvocationError struct {
	Binary string // Binary that could not be run
	Err    error  // Underlying error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("failed to invoke %s: %v", e.Binary, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// NewInvocationError creates a new InvocationError
func NewInvocationError(binary string, err error) *InvocationError {
	return &InvocationError{Binary: binary, Err: err}
}

// IsInvocationError checks if an error is an InvocationError
func IsInvocationError(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
