package syntax

import "strings"

// Flags control parsing and matching behaviour.
type Flags uint8

const (
	// FoldCase enables simple case-insensitive matching (i).
	FoldCase Flags = 1 << iota

	// Multiline makes ^ and $ match at line terminators (m).
	Multiline

	// DotAll makes . match line terminators (s).
	DotAll

	// Sticky anchors every search at its start index (y).
	Sticky
)

// ParseFlags parses an ECMAScript flag string such as "im".
// Each flag may appear once.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for i, c := range s {
		var bit Flags
		switch c {
		case 'i':
			bit = FoldCase
		case 'm':
			bit = Multiline
		case 's':
			bit = DotAll
		case 'y':
			bit = Sticky
		default:
			return 0, &Error{Code: ErrInvalidFlag, Pos: i, Pattern: s}
		}
		if f&bit != 0 {
			return 0, &Error{Code: ErrInvalidFlag, Pos: i, Pattern: s}
		}
		f |= bit
	}
	return f, nil
}

// String returns the flags in canonical order
func (f Flags) String() string {
	var sb strings.Builder
	if f&FoldCase != 0 {
		sb.WriteByte('i')
	}
	if f&Multiline != 0 {
		sb.WriteByte('m')
	}
	if f&DotAll != 0 {
		sb.WriteByte('s')
	}
	if f&Sticky != 0 {
		sb.WriteByte('y')
	}
	return sb.String()
}
