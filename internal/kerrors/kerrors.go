// Package kerrors defines the structured error type shared by the
// simulator core (internal/sched) and the root package it's wired into,
// so lower layers can construct rich errors without importing the
// package that would create an import cycle.
package kerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a structured simulator error with operation context.
type Error struct {
	Op    string    // primitive that failed, e.g. "create", "sem_p", "send"
	Pid   int       // pid involved, -1 if not applicable
	SemID int       // semaphore id involved, -1 if not applicable
	Code  ErrorCode // high-level error category
	Msg   string    // human-readable message
	Inner error     // wrapped error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Pid >= 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.Pid))
	}
	if e.SemID >= 0 {
		parts = append(parts, fmt.Sprintf("sem=%d", e.SemID))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("kernelsim: %s (%s)", msg, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("kernelsim: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode is the high-level error taxonomy from the specification's
// error-handling design: invalid argument, precondition violated, resource
// exhaustion, not found.
type ErrorCode string

const (
	ErrCodeInvalidArgument   ErrorCode = "invalid argument"
	ErrCodePrecondition      ErrorCode = "precondition violated"
	ErrCodeResourceExhausted ErrorCode = "resource exhausted"
	ErrCodeNotFound          ErrorCode = "not found"
)

// New creates a structured error with no pid/semaphore context.
func New(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Pid: -1, SemID: -1, Code: code, Msg: msg}
}

// NewProc creates a structured error naming the pid involved.
func NewProc(op string, pid int, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Pid: pid, SemID: -1, Code: code, Msg: msg}
}

// NewSem creates a structured error naming the semaphore id involved.
func NewSem(op string, semID int, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Pid: -1, SemID: semID, Code: code, Msg: msg}
}

// Wrap wraps an existing error with simulator operation context,
// preserving pid/semaphore/code if the inner error is already structured.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{
			Op:    op,
			Pid:   se.Pid,
			SemID: se.SemID,
			Code:  se.Code,
			Msg:   se.Msg,
			Inner: se.Inner,
		}
	}
	return &Error{
		Op:    op,
		Pid:   -1,
		SemID: -1,
		Code:  ErrCodeInvalidArgument,
		Msg:   inner.Error(),
		Inner: inner,
	}
}

// IsCode reports whether err is a structured Error carrying code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
