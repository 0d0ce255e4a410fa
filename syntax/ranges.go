package syntax

import (
	"sort"
	"unicode"
)

// Predefined character sets, as [lo, hi] pairs.
var (
	digitRanges = []rune{'0', '9'}
	wordRanges  = []rune{'0', '9', 'A', 'Z', '_', '_', 'a', 'z'}
	spaceRanges = []rune{
		'\t', '\r',
		' ', ' ',
		0xA0, 0xA0,
		0x1680, 0x1680,
		0x2000, 0x200A,
		0x2028, 0x2029,
		0x202F, 0x202F,
		0x205F, 0x205F,
		0x3000, 0x3000,
		0xFEFF, 0xFEFF,
	}
	lineTerminatorRanges = []rune{'\n', '\n', '\r', '\r', 0x2028, 0x2029}
)

// MaxUnit is the largest code unit a class escape complement covers:
// \D, \W and \S match single UTF-16 code units.
const MaxUnit = 0xFFFF

// normalizeRanges sorts pairs and merges overlapping or adjacent ones.
func normalizeRanges(r []rune) []rune {
	if len(r) <= 2 {
		return r
	}
	pairs := make([][2]rune, 0, len(r)/2)
	for i := 0; i < len(r); i += 2 {
		pairs = append(pairs, [2]rune{r[i], r[i+1]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	out := make([]rune, 0, len(r))
	for _, p := range pairs {
		n := len(out)
		if n > 0 && p[0] <= out[n-1]+1 {
			if p[1] > out[n-1] {
				out[n-1] = p[1]
			}
			continue
		}
		out = append(out, p[0], p[1])
	}
	return out
}

// negateRanges complements normalized pairs within [0, limit].
func negateRanges(r []rune, limit rune) []rune {
	out := make([]rune, 0, len(r)+2)
	next := rune(0)
	for i := 0; i < len(r) && r[i] <= limit; i += 2 {
		if r[i] > next {
			out = append(out, next, r[i]-1)
		}
		next = r[i+1] + 1
	}
	if next <= limit {
		out = append(out, next, limit)
	}
	return out
}

// Bounds of the runes that take part in case folding.
const (
	minFold = 0x0041
	maxFold = 0x1E943
)

// foldOrbit returns the runes that compare equal to r under
// case-insensitive matching. ASCII characters only fold with ASCII
// characters, so U+212A KELVIN SIGN does not match 'k'.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	ascii := r < 0x80
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if (f < 0x80) == ascii {
			orbit = append(orbit, f)
		}
	}
	return orbit
}

// foldRanges adds the case variants of every rune in r.
func foldRanges(r []rune) []rune {
	out := append([]rune(nil), r...)
	for i := 0; i < len(r); i += 2 {
		lo, hi := r[i], r[i+1]
		if lo < minFold {
			lo = minFold
		}
		if hi > maxFold {
			hi = maxFold
		}
		for c := lo; c <= hi; c++ {
			for _, f := range foldOrbit(c)[1:] {
				out = append(out, f, f)
			}
		}
	}
	return normalizeRanges(out)
}
