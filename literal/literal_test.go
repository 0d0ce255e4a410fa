package literal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/coregx/regvm/syntax"
)

func strs(s *Seq) []string {
	var out []string
	for _, l := range s.Literals() {
		out = append(out, l.String())
	}
	return out
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		pattern string
		flags   syntax.Flags
		want    []string // nil: no prefix known
	}{
		{"hello", 0, []string{"hello"}},
		{"foo|bar", 0, []string{"foo", "bar"}},
		{"[ab]c", 0, []string{"ac", "bc"}},
		{"ab", syntax.FoldCase, []string{"AB", "Ab", "aB", "ab"}},
		{"hello.*world", 0, []string{"hello…"}},
		{"a+b", 0, []string{"a…"}},
		{"(?:ab){2}", 0, []string{"ab…"}},
		{`\bfoo\b`, 0, []string{"foo"}},
		{"(foo)bar", 0, []string{"foobar"}},
		{"foo|foobar", 0, []string{"foo"}},
		{"a*b", 0, nil},
		{".x", 0, nil},
		{"[a-z]x", 0, nil},
		{"[^a]", 0, nil},
		{"é", 0, nil},
		{"a|", 0, nil},
		{"(?=a)a", 0, nil},
		{"", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := syntax.MustParse(tt.pattern, tt.flags)
			got := New(DefaultConfig()).ExtractPrefixes(re)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ExtractPrefixes(%q) = %v, want nil", tt.pattern, strs(got))
				}
				return
			}
			if got == nil {
				t.Fatalf("ExtractPrefixes(%q) = nil", tt.pattern)
			}
			sort := cmpopts.SortSlices(func(a, b string) bool { return a < b })
			if diff := cmp.Diff(tt.want, strs(got), sort); diff != "" {
				t.Errorf("ExtractPrefixes(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

func TestLimits(t *testing.T) {
	re := syntax.MustParse("[ab][cd][ef]", 0)
	if got := New(Config{MaxLiterals: 4, MaxLiteralLen: 8, MaxClassSize: 10}).ExtractPrefixes(re); got == nil {
		t.Fatal("expected truncated prefixes")
	} else if diff := cmp.Diff([]string{"ac…", "ad…", "bc…", "bd…"}, strs(got)); diff != "" {
		t.Errorf("literal limit mismatch (-want +got):\n%s", diff)
	}

	re = syntax.MustParse("abcdef", 0)
	got := New(Config{MaxLiterals: 4, MaxLiteralLen: 3, MaxClassSize: 10}).ExtractPrefixes(re)
	if diff := cmp.Diff([]string{"abc…"}, strs(got)); diff != "" {
		t.Errorf("length limit mismatch (-want +got):\n%s", diff)
	}
}

func TestSeq(t *testing.T) {
	s := NewSeq(
		Literal{Bytes: []byte("help")},
		Literal{Bytes: []byte("hello"), Complete: true},
		Literal{Bytes: []byte("hel"), Complete: true},
		Literal{Bytes: []byte("hel"), Complete: true},
	)
	if got := string(s.LongestCommonPrefix()); got != "hel" {
		t.Errorf("LongestCommonPrefix() = %q", got)
	}
	s.Minimize()
	if diff := cmp.Diff([]string{"hel"}, strs(s)); diff != "" {
		t.Errorf("Minimize mismatch (-want +got):\n%s", diff)
	}

	var infinite *Seq
	if infinite.Len() != 0 || infinite.IsEmpty() || !NewSeq().IsEmpty() {
		t.Error("nil and empty sequences confused")
	}
}
