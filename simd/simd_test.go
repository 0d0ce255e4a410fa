package simd

import (
	"bytes"
	"strings"
	"testing"
)

// bothKernels runs f with the one-word and the four-word loops.
func bothKernels(t *testing.T, f func(t *testing.T)) {
	t.Helper()
	saved := wide
	defer func() { wide = saved }()
	for _, w := range []bool{false, true} {
		wide = w
		name := "narrow"
		if w {
			name = "wide"
		}
		t.Run(name, f)
	}
}

func TestMemchr(t *testing.T) {
	long := strings.Repeat("x", 100)
	tests := []struct {
		haystack string
		needle   byte
	}{
		{"", 'a'},
		{"a", 'a'},
		{"abc", 'c'},
		{"abcdefgh", 'h'},
		{"abcdefghi", 'i'},
		{long + "a", 'a'},
		{long[:40] + "a" + long, 'a'},
		{long, 'a'},
		{"\x80\x01\x00", 0},
		{"\x01\x01\x01\x01\x01\x01\x01\x01\x00\x01", 0},
	}
	bothKernels(t, func(t *testing.T) {
		for _, tt := range tests {
			want := bytes.IndexByte([]byte(tt.haystack), tt.needle)
			if got := Memchr([]byte(tt.haystack), tt.needle); got != want {
				t.Errorf("Memchr(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, want)
			}
		}
	})
}

func TestMemchr23(t *testing.T) {
	haystack := []byte(strings.Repeat("-", 37) + "q" + strings.Repeat("-", 5) + "p" + "z")
	bothKernels(t, func(t *testing.T) {
		if got := Memchr2(haystack, 'p', 'q'); got != 37 {
			t.Errorf("Memchr2 = %d, want 37", got)
		}
		if got := Memchr2(haystack, 'p', 'z'); got != 43 {
			t.Errorf("Memchr2 = %d, want 43", got)
		}
		if got := Memchr3(haystack, 'z', 'p', 'q'); got != 37 {
			t.Errorf("Memchr3 = %d, want 37", got)
		}
		if got := Memchr3(haystack, 'a', 'b', 'c'); got != -1 {
			t.Errorf("Memchr3 = %d, want -1", got)
		}
	})
}

func TestIsASCII(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{"", true},
		{"hello", true},
		{strings.Repeat("a", 70), true},
		{"héllo", false},
		{strings.Repeat("a", 33) + "\xff", false},
		{strings.Repeat("a", 64) + "\x80" + strings.Repeat("a", 7), false},
	}
	bothKernels(t, func(t *testing.T) {
		for _, tt := range tests {
			if got := IsASCII([]byte(tt.data)); got != tt.want {
				t.Errorf("IsASCII(%q) = %v, want %v", tt.data, got, tt.want)
			}
		}
	})
}

func TestMemmem(t *testing.T) {
	long := strings.Repeat("ab", 40)
	tests := []struct {
		name     string
		haystack string
		needle   string
	}{
		{"empty needle", "hello", ""},
		{"empty haystack", "", "x"},
		{"single byte", "hello", "e"},
		{"at start", "hello world", "hello"},
		{"at end", "hello world", "world"},
		{"not found", "hello world", "xyz"},
		{"needle too long", "hi", "hello"},
		{"first of several", "hello hello", "hello"},
		{"overlapping", "aaaa", "aa"},
		{"rare byte near start", "zq zqx zqy", "zqy"},
		{"rare byte in haystack prefix", "Qxxxx", "xQ"},
		{"repeated", "aaaaabaaaa", "ab"},
		{"rare byte at haystack end", "abcdQ", "cdQ"},
		{"null bytes", "\x00\x01\x02\x03", "\x02\x03"},
		{"high bytes", "\x01\x02\xff\xfe\x05", "\xff\xfe"},
		{"long", long + "abc" + long, "babc"},
		{"long needle", long + "x" + long, long[:50] + "x"},
	}
	bothKernels(t, func(t *testing.T) {
		for _, tt := range tests {
			want := bytes.Index([]byte(tt.haystack), []byte(tt.needle))
			if got := Memmem([]byte(tt.haystack), []byte(tt.needle)); got != want {
				t.Errorf("%s: Memmem(%q, %q) = %d, want %d", tt.name, tt.haystack, tt.needle, got, want)
			}
		}
	})
}

func TestSelectRareBytes(t *testing.T) {
	tests := []struct {
		needle string
		want   RareBytes
	}{
		{"", RareBytes{}},
		{"a", RareBytes{Byte1: 'a', Byte2: 'a'}},
		{"aa", RareBytes{Byte1: 'a', Index1: 0, Byte2: 'a', Index2: 1}},
		{"ea", RareBytes{Byte1: 'a', Index1: 1, Byte2: 'e', Index2: 0}},
		{"the@Zone", RareBytes{Byte1: 'Z', Index1: 4, Byte2: '@', Index2: 3}},
		{"aaz", RareBytes{Byte1: 'z', Index1: 2, Byte2: 'a', Index2: 0}},
		{"zzq", RareBytes{Byte1: 'q', Index1: 2, Byte2: 'z', Index2: 0}},
	}
	for _, tt := range tests {
		if got := SelectRareBytes([]byte(tt.needle)); got != tt.want {
			t.Errorf("SelectRareBytes(%q) = %+v, want %+v", tt.needle, got, tt.want)
		}
	}
	if ByteRank('Q') >= ByteRank('e') {
		t.Errorf("ByteRank('Q') = %d, not rarer than 'e' (%d)", ByteRank('Q'), ByteRank('e'))
	}
}
