package syntax

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestParseTree(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		want    string
	}{
		{"", 0, "empty"},
		{"a", 0, "lit{'a'}"},
		{"ab", 0, "cat{lit{'a'} lit{'b'}}"},
		{"a|b|", 0, "alt{lit{'a'} lit{'b'} empty}"},
		{"(a)(?:b)", 0, "cat{cap1{lit{'a'}} lit{'b'}}"},
		{"a*?", 0, "rep{0,-1? lit{'a'}}"},
		{"a+", 0, "rep{1,-1 lit{'a'}}"},
		{"a{2,5}", 0, "rep{2,5 lit{'a'}}"},
		{"a{3,}", 0, "rep{3,-1 lit{'a'}}"},
		{"a{,3}", 0, "cat{lit{'a'} lit{'{'} lit{','} lit{'3'} lit{'}'}}"},
		{"[a-c\\d]", 0, "class{'0'-'9' 'a'-'c'}"},
		{"[^x]", 0, "class{^'x'}"},
		{"[]", 0, "class{}"},
		{"[\\d-z]", 0, "class{'-' '0'-'9' 'z'}"},
		{"(?<=a)(?!b)", 0, "cat{lookbehind={lit{'a'}} lookahead!{lit{'b'}}}"},
		{"(?=a)*", 0, "rep{0,-1 lookahead={lit{'a'}}}"},
		{"k", FoldCase, "class{'K' 'k'}"},
		{"\\x41\\u0042\\cJ\\0", 0, "cat{lit{'A'} lit{'B'} lit{'\\n'} lit{'\\x00'}}"},
		{"\\1", 0, "lit{'\\x01'}"},
		{"\\8", 0, "lit{'8'}"},
		{"\\xZ", 0, "cat{lit{'x'} lit{'Z'}}"},
		{"\\c1", 0, "cat{lit{'\\\\'} lit{'c'} lit{'1'}}"},
		{"é", 0, "lit{'é'}"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Parse(tt.pattern, tt.flags)
			assert.NilError(t, err)
			assert.Equal(t, re.Root.String(), tt.want)
		})
	}
}

func TestParseAssertions(t *testing.T) {
	re := MustParse("^$\\b\\B", 0)
	var kinds []AssertKind
	for _, sub := range re.Root.Subs {
		kinds = append(kinds, sub.Assert)
	}
	assert.DeepEqual(t, kinds, []AssertKind{AssertBegin, AssertEnd, AssertWordBoundary, AssertNotWordBoundary})

	re = MustParse("^$", Multiline)
	assert.Equal(t, re.Root.Subs[0].Assert, AssertBeginLine)
	assert.Equal(t, re.Root.Subs[1].Assert, AssertEndLine)
}

func TestParseDot(t *testing.T) {
	re := MustParse(".", 0)
	assert.Equal(t, re.Root.Op, OpClass)
	assert.Check(t, re.Root.Negate)
	assert.DeepEqual(t, re.Root.Ranges, lineTerminatorRanges)

	re = MustParse(".", DotAll)
	assert.Check(t, re.Root.Negate)
	assert.Check(t, is.Len(re.Root.Ranges, 0))
}

func TestParseNames(t *testing.T) {
	re := MustParse("(?<year>\\d{4})-(\\d\\d)(?<day>x)", 0)
	assert.DeepEqual(t, re.Names, []string{"", "year", "", "day"})
	assert.Equal(t, re.NumCaptures(), 3)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		pattern string
		code    ErrorCode
		pos     int
	}{
		{"(a", ErrMissingParen, 0},
		{"a)", ErrUnexpectedParen, 1},
		{"[a", ErrMissingBracket, 0},
		{"*a", ErrNothingToRepeat, 0},
		{"a{2}{3}", ErrNothingToRepeat, 4},
		{"^*", ErrNothingToRepeat, 0},
		{"(?<=a)+", ErrNothingToRepeat, 0},
		{"a{3,2}", ErrInvalidRepeat, 1},
		{"a{1001}", ErrRepeatTooLarge, 1},
		{"[z-a]", ErrInvalidClassRange, 1},
		{"(?<1a>x)", ErrInvalidGroupName, 3},
		{"(?<a>x)(?<a>y)", ErrDuplicateGroupName, 10},
		{"a\\", ErrTrailingBackslash, 1},
		{"(?x)", ErrInvalidGroupName, 1},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Parse(tt.pattern, 0)
			var se *Error
			assert.Assert(t, errors.As(err, &se), "error %v", err)
			assert.Equal(t, se.Code, tt.code)
			assert.Equal(t, se.Pos, tt.pos)
		})
	}
}

func TestParseBackreferenceUnsupported(t *testing.T) {
	for _, pattern := range []string{"(a)\\1", "(?<n>a)\\k<n>"} {
		_, err := Parse(pattern, 0)
		assert.Check(t, errors.Is(err, ErrUnsupported), "pattern %q: %v", pattern, err)
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("ymi")
	assert.NilError(t, err)
	assert.Equal(t, f, FoldCase|Multiline|Sticky)
	assert.Equal(t, f.String(), "imy")

	for _, bad := range []string{"g", "ii", "x"} {
		_, err := ParseFlags(bad)
		assert.Check(t, err != nil, "flags %q", bad)
	}
}

func TestFoldOrbit(t *testing.T) {
	// Kelvin sign and long s never match their ASCII look-alikes.
	assert.DeepEqual(t, foldOrbit('k'), []rune{'k', 'K'})
	assert.DeepEqual(t, foldOrbit(0x212A), []rune{0x212A})
	assert.DeepEqual(t, foldOrbit(0x017F), []rune{0x017F})
	assert.DeepEqual(t, foldOrbit('1'), []rune{'1'})
}

func TestFoldRanges(t *testing.T) {
	got := foldRanges([]rune{'a', 'c'})
	assert.DeepEqual(t, got, []rune{'A', 'C', 'a', 'c'})
}

func TestNegateRanges(t *testing.T) {
	got := negateRanges([]rune{'0', '9'}, MaxUnit)
	assert.DeepEqual(t, got, []rune{0, '0' - 1, '9' + 1, MaxUnit})
	assert.DeepEqual(t, negateRanges(nil, 0x10FFFF), []rune{0, 0x10FFFF})
	assert.DeepEqual(t, negateRanges([]rune{0, 0xFF, 0x1000, 0x2000}, 0xFF), []rune{})
}

func TestHasCaptures(t *testing.T) {
	assert.Check(t, HasCaptures(MustParse("(?:a(b))*", 0).Root))
	assert.Check(t, !HasCaptures(MustParse("(?:ab)*", 0).Root))
}
