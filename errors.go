// Package kernelsim implements a didactic process-control simulator: PCB
// lifecycle, priority scheduling, synchronous message passing, and counting
// semaphores, over a single in-memory instance.
package kernelsim

import "github.com/noahkrem/kernelsim/internal/kerrors"

// Error represents a structured simulator error with operation context.
// It is an alias of the type internal/sched constructs directly, so errors
// returned from the core reach callers here with no loss of detail.
type Error = kerrors.Error

// ErrorCode is the high-level error taxonomy from the specification's
// error-handling design: invalid argument, precondition violated, resource
// exhaustion, not found.
type ErrorCode = kerrors.ErrorCode

const (
	ErrCodeInvalidArgument   = kerrors.ErrCodeInvalidArgument
	ErrCodePrecondition      = kerrors.ErrCodePrecondition
	ErrCodeResourceExhausted = kerrors.ErrCodeResourceExhausted
	ErrCodeNotFound          = kerrors.ErrCodeNotFound
)

// NewError creates a structured error with no pid/semaphore context.
func NewError(op string, code ErrorCode, msg string) *Error { return kerrors.New(op, code, msg) }

// NewProcError creates a structured error naming the pid involved.
func NewProcError(op string, pid int, code ErrorCode, msg string) *Error {
	return kerrors.NewProc(op, pid, code, msg)
}

// NewSemError creates a structured error naming the semaphore id involved.
func NewSemError(op string, semID int, code ErrorCode, msg string) *Error {
	return kerrors.NewSem(op, semID, code, msg)
}

// WrapError wraps an existing error with simulator operation context,
// preserving pid/semaphore/code if the inner error is already structured.
func WrapError(op string, inner error) *Error { return kerrors.Wrap(op, inner) }

// IsCode reports whether err is a structured Error carrying code.
func IsCode(err error, code ErrorCode) bool { return kerrors.IsCode(err, code) }
