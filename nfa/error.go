// Package nfa executes compiled bytecode programs with a backtracking-free
// NFA interpreter.
//
// Threads are simulated in lockstep over the input, one code unit at a
// time, in priority order. A (pc, position) state runs at most once per
// pass, so a search costs O(program size x input length) regardless of the
// pattern. Lookarounds are resolved either by side lanes stepped alongside
// the main search (captureless lookbehinds only) or by per-lookaround
// tables filled before the search. Capture groups are reported using
// ECMAScript semantics by a filter pass over the winning thread.
package nfa

import (
	"errors"
	"fmt"
)

// Common interpreter errors
var (
	// ErrRetry indicates the call was interrupted from generated code and
	// must be retried by the caller. No output was written.
	ErrRetry = errors.New("interrupted, retry")

	// ErrException indicates the call was aborted: out of memory, stack
	// overflow or a failed interrupt handler.
	ErrException = errors.New("execution aborted")

	// ErrInvalidProgram indicates the bytecode failed validation
	ErrInvalidProgram = errors.New("invalid program")

	// ErrOutputTooSmall indicates the output buffer cannot hold the requested matches
	ErrOutputTooSmall = errors.New("output buffer too small")
)

// ProgramError describes why a program was rejected by Load.
type ProgramError struct {
	PC      int
	Filter  bool
	Message string
}

// Error implements the error interface
func (e *ProgramError) Error() string {
	section := "code"
	if e.Filter {
		section = "filter"
	}
	if e.PC >= 0 {
		return fmt.Sprintf("invalid program: %s pc %d: %s", section, e.PC, e.Message)
	}
	return fmt.Sprintf("invalid program: %s", e.Message)
}

// Unwrap returns ErrInvalidProgram
func (e *ProgramError) Unwrap() error {
	return ErrInvalidProgram
}

// Outcome classifies the result of FindMatches for callers that dispatch
// on it rather than on errors.
type Outcome uint8

const (
	// OutcomeSuccess means the call completed; the match count is valid.
	OutcomeSuccess Outcome = iota

	// OutcomeException means the call was aborted.
	OutcomeException

	// OutcomeRetry means the call must be retried.
	OutcomeRetry
)

// String returns a human-readable representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeException:
		return "exception"
	case OutcomeRetry:
		return "retry"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// OutcomeOf maps an error returned by FindMatches to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrRetry):
		return OutcomeRetry
	default:
		return OutcomeException
	}
}
