package syntax

import (
	"errors"
	"fmt"
)

// ErrorCode describes a class of syntax error.
type ErrorCode string

const (
	ErrMissingParen       ErrorCode = "missing closing )"
	ErrUnexpectedParen    ErrorCode = "unexpected )"
	ErrMissingBracket     ErrorCode = "missing closing ]"
	ErrNothingToRepeat    ErrorCode = "nothing to repeat"
	ErrInvalidRepeat      ErrorCode = "invalid quantifier range"
	ErrInvalidEscape      ErrorCode = "invalid escape"
	ErrInvalidClassRange  ErrorCode = "invalid character class range"
	ErrInvalidGroupName   ErrorCode = "invalid group name"
	ErrDuplicateGroupName ErrorCode = "duplicate group name"
	ErrTrailingBackslash  ErrorCode = "trailing backslash"
	ErrInvalidFlag        ErrorCode = "invalid flag"
	ErrRepeatTooLarge     ErrorCode = "quantifier bound too large"
)

// ErrUnsupported is wrapped by errors for valid ECMAScript constructs the
// engine cannot run in linear time, such as backreferences.
var ErrUnsupported = errors.New("unsupported construct")

// Error is a pattern syntax error.
type Error struct {
	Code    ErrorCode
	Pos     int // byte offset in Pattern
	Pattern string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("syntax: %s at offset %d in %q: %v", e.Code, e.Pos, e.Pattern, e.Err)
	}
	return fmt.Sprintf("syntax: %s at offset %d in %q", e.Code, e.Pos, e.Pattern)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
