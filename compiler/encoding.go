package compiler

import (
	"fmt"
	"unicode/utf16"
)

// Encoding selects the code unit the program consumes.
type Encoding uint8

const (
	// Latin1 programs consume one byte per character. Characters above
	// U+00FF cannot match.
	Latin1 Encoding = iota

	// UTF16 programs consume UTF-16 code units. Characters above U+FFFF
	// are matched as surrogate pairs.
	UTF16
)

// String returns a human-readable representation of the encoding
func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "latin1"
	case UTF16:
		return "utf16"
	default:
		return fmt.Sprintf("Encoding(%d)", e)
	}
}

// maxUnit returns the largest code unit value.
func (e Encoding) maxUnit() rune {
	if e == Latin1 {
		return 0xFF
	}
	return 0xFFFF
}

// units returns the code unit sequence of r, or false if r is not
// representable.
func (e Encoding) units(r rune) ([]uint16, bool) {
	if r <= e.maxUnit() {
		return []uint16{uint16(r)}, true
	}
	if e == UTF16 && r <= 0x10FFFF {
		lead, trail := utf16.EncodeRune(r)
		return []uint16{uint16(lead), uint16(trail)}, true
	}
	return nil, false
}

type unitRange struct {
	lo, hi uint16
}

// classSequences lowers a normalized rune class to alternatives, each a
// sequence of one or two unit ranges in forward order. Negated classes
// are complemented within the unit domain and always consume one unit.
func (e Encoding) classSequences(ranges []rune, negate bool) [][]unitRange {
	limit := e.maxUnit()
	var seqs [][]unitRange
	if negate {
		next := rune(0)
		for i := 0; i < len(ranges) && ranges[i] <= limit; i += 2 {
			if ranges[i] > next {
				seqs = append(seqs, []unitRange{{uint16(next), uint16(ranges[i] - 1)}})
			}
			next = ranges[i+1] + 1
		}
		if next <= limit {
			seqs = append(seqs, []unitRange{{uint16(next), uint16(limit)}})
		}
		return seqs
	}

	for i := 0; i < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if lo <= limit {
			seqs = append(seqs, []unitRange{{uint16(lo), uint16(min(hi, limit))}})
		}
		if e == UTF16 && hi > 0xFFFF {
			seqs = append(seqs, surrogateSequences(max(lo, 0x10000), min(hi, 0x10FFFF))...)
		}
	}
	return seqs
}

// surrogateSequences splits an astral range into lead/trail range pairs.
func surrogateSequences(lo, hi rune) [][]unitRange {
	loLead, loTrail := utf16.EncodeRune(lo)
	hiLead, hiTrail := utf16.EncodeRune(hi)
	pair := func(l1, l2, t1, t2 rune) []unitRange {
		return []unitRange{{uint16(l1), uint16(l2)}, {uint16(t1), uint16(t2)}}
	}
	if loLead == hiLead {
		return [][]unitRange{pair(loLead, loLead, loTrail, hiTrail)}
	}
	seqs := [][]unitRange{pair(loLead, loLead, loTrail, 0xDFFF)}
	if loLead+1 <= hiLead-1 {
		seqs = append(seqs, pair(loLead+1, hiLead-1, 0xDC00, 0xDFFF))
	}
	return append(seqs, pair(hiLead, hiLead, 0xDC00, hiTrail))
}
