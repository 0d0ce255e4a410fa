package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrTooComplex indicates the program exceeds Config limits.
	ErrTooComplex = errors.New("pattern too complex")

	// ErrTooManyLookarounds indicates more lookarounds than the payload can index.
	ErrTooManyLookarounds = errors.New("too many lookarounds")

	// ErrInvalidConfig indicates an unusable Config.
	ErrInvalidConfig = errors.New("invalid compiler configuration")
)

// CompileError wraps compilation errors with the offending pattern.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface
func (e *CompileError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("compile failed for pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("compile failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Err
}
