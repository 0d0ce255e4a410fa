package prefilter

import (
	"testing"

	"github.com/coregx/regvm/literal"
	"github.com/coregx/regvm/syntax"
)

func build(t *testing.T, pattern string) Prefilter {
	t.Helper()
	seq := literal.New(literal.DefaultConfig()).ExtractPrefixes(syntax.MustParse(pattern, 0))
	return NewBuilder(seq).Build()
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"a+", `memchr"a"`},
		{"[xy]z*", `memchr"xy"`},
		{"hello", `memmem("hello")`},
		{"foo|bar", "aho-corasick(2 patterns)"},
		{"[a-d]x", "aho-corasick(4 patterns)"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			pf := build(t, tt.pattern)
			if pf == nil {
				t.Fatalf("Build(%q) = nil", tt.pattern)
			}
			if got := pf.String(); got != tt.want {
				t.Errorf("strategy = %s, want %s", got, tt.want)
			}
		})
	}
	if pf := build(t, "a*"); pf != nil {
		t.Errorf("Build(a*) = %s, want nil", pf)
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		pattern  string
		haystack string
		at       int
		want     int
	}{
		{"a", "xxa", 0, 2},
		{"a", "xxa", 3, -1},
		{"[xy]", "abcy", 1, 3},
		{"[xyz]", "abcz", 0, 3},
		{"hello", "help hello", 0, 5},
		{"hello", "help hello", 6, -1},
		{"hello", "hell", 0, -1},
		{"hello", "hellhello", 1, 4},
		{"hello", "hello", 6, -1},
		{"q@x", "q@q@x", 0, 2},
		{"foo|bar", "xxbarfoo", 0, 2},
		{"foo|bar", "xxbarfoo", 3, 5},
		{"foo|bar", "xxba", 0, -1},
	}
	for _, tt := range tests {
		pf := build(t, tt.pattern)
		if got := pf.Find([]byte(tt.haystack), tt.at); got != tt.want {
			t.Errorf("%s.Find(%q, %d) = %d, want %d", pf, tt.haystack, tt.at, got, tt.want)
		}
	}
}
