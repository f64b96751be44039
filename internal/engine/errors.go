package engine

import (
	"fmt"
	"strings"
)

// ConcurrentOperationError means another apply or remove holds the project
// lock. The caller should retry once the other operation finishes.
type ConcurrentOperationError struct {
	LockFile string
}

func (e ConcurrentOperationError) Error() string {
	return fmt.Sprintf("another operation is in progress (lock held at %s)", e.LockFile)
}

// PartialRollbackError means rollback itself failed part way. Leftover names
// every file or script key left in an inconsistent state; it is surfaced
// verbatim so the user knows exactly what needs manual cleanup.
type PartialRollbackError struct {
	Cause    error
	Leftover []string
}

func (e PartialRollbackError) Error() string {
	return fmt.Sprintf("rollback incomplete after %v; needs manual cleanup: %s",
		e.Cause, strings.Join(e.Leftover, ", "))
}

func (e PartialRollbackError) Unwrap() error { return e.Cause }

// StepError wraps a failure with the engine step it occurred in.
type StepError struct {
	Step State
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("%s: %v", strings.ToLower(string(e.Step)), e.Err)
}

func (e StepError) Unwrap() error { return e.Err }
