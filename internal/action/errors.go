package action

import (
	"errors"
	"fmt"
)

// ErrEmptyTarget means substitution produced a target with no content.
var ErrEmptyTarget = errors.New("action: resolved target is empty")

// ArityError reports a mismatch between a binding's parameter count and the
// number of parameters its scheme requires.
type ArityError struct {
	SchemeID string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("action: scheme %s expects %d params, binding has %d", e.SchemeID, e.Want, e.Got)
}

// DispatchReason classifies why a dispatch failed.
type DispatchReason string

const (
	// ReasonSchemeNotFound: the binding references a scheme that no longer
	// exists (deleted out from under the task).
	ReasonSchemeNotFound DispatchReason = "scheme_not_found"
	// ReasonBadBinding: resolution failed (arity mismatch, empty target).
	ReasonBadBinding DispatchReason = "bad_binding"
	// ReasonExecutorRejected: the host environment refused to open the URL or
	// launch the script.
	ReasonExecutorRejected DispatchReason = "executor_rejected"
)

// DispatchError is the only error kind that crosses the dispatch boundary.
// Resolution and execution failures are never swallowed; the caller decides
// whether to surface or log them.
type DispatchError struct {
	Reason   DispatchReason
	SchemeID string
	Err      error
}

func (e *DispatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("action: dispatch failed (%s, scheme %s)", e.Reason, e.SchemeID)
	}
	return fmt.Sprintf("action: dispatch failed (%s, scheme %s): %v", e.Reason, e.SchemeID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
