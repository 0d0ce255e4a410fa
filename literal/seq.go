// Package literal extracts the byte literals every match of a pattern must
// start with. The root package turns them into a prefilter that skips input
// positions where no match can begin.
package literal

import (
	"bytes"
	"slices"
)

// Literal is a byte string a match starts with. Complete is set when only
// zero-width assertions can follow the literal in a match.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// String formats the literal for debugging.
func (l Literal) String() string {
	if l.Complete {
		return string(l.Bytes)
	}
	return string(l.Bytes) + "…"
}

// Seq is a finite set of alternative literals. A nil *Seq stands for the
// infinite set: nothing is known about how matches start.
type Seq struct {
	lits []Literal
}

// NewSeq returns a sequence holding lits.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{lits: lits}
}

// Len returns the number of literals.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lits)
}

// IsEmpty reports whether s is finite and holds no literal.
func (s *Seq) IsEmpty() bool {
	return s != nil && len(s.lits) == 0
}

// Get returns the i-th literal.
func (s *Seq) Get(i int) Literal {
	return s.lits[i]
}

// Literals returns the literals in order.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.lits
}

// HasEmpty reports whether some literal has no bytes, in which case any
// position may start a match.
func (s *Seq) HasEmpty() bool {
	for _, l := range s.Literals() {
		if len(l.Bytes) == 0 {
			return true
		}
	}
	return false
}

// Minimize removes duplicates and every literal that has another literal
// of the set as a prefix: a search for the shorter one finds it anyway.
func (s *Seq) Minimize() {
	if s == nil || len(s.lits) < 2 {
		return
	}
	sorted := slices.Clone(s.lits)
	slices.SortStableFunc(sorted, func(a, b Literal) int {
		return len(a.Bytes) - len(b.Bytes)
	})
	kept := sorted[:0]
	for _, l := range sorted {
		redundant := false
		for _, k := range kept {
			if bytes.HasPrefix(l.Bytes, k.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, l)
		}
	}
	s.lits = kept
}

// LongestCommonPrefix returns the bytes every literal starts with.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.Len() == 0 {
		return nil
	}
	prefix := s.lits[0].Bytes
	for _, l := range s.lits[1:] {
		n := 0
		for n < len(prefix) && n < len(l.Bytes) && prefix[n] == l.Bytes[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

// union returns a ∪ b, or nil if either is infinite or the result exceeds
// limit literals.
func union(a, b *Seq, limit int) *Seq {
	if a == nil || b == nil || a.Len()+b.Len() > limit {
		return nil
	}
	lits := make([]Literal, 0, a.Len()+b.Len())
	lits = append(lits, a.lits...)
	lits = append(lits, b.lits...)
	return NewSeq(lits...)
}

// cross appends every literal of b to every complete literal of a.
// Incomplete literals of a are kept as they are. The result is nil if it
// would exceed limit literals; literals are cut to maxLen bytes.
func cross(a, b *Seq, limit, maxLen int) *Seq {
	if a == nil {
		return nil
	}
	if b == nil {
		return inexact(a)
	}
	n := 0
	for _, l := range a.lits {
		if l.Complete {
			n += b.Len()
		} else {
			n++
		}
	}
	if n > limit {
		return inexact(a)
	}
	out := make([]Literal, 0, n)
	for _, l := range a.lits {
		if !l.Complete {
			out = append(out, l)
			continue
		}
		for _, r := range b.lits {
			joined := append(slices.Clip(l.Bytes), r.Bytes...)
			lit := Literal{Bytes: joined, Complete: r.Complete}
			if len(joined) > maxLen {
				lit = Literal{Bytes: joined[:maxLen], Complete: false}
			}
			out = append(out, lit)
		}
	}
	return NewSeq(out...)
}

// inexact marks every literal of s incomplete.
func inexact(s *Seq) *Seq {
	if s == nil {
		return nil
	}
	out := make([]Literal, len(s.lits))
	for i, l := range s.lits {
		out[i] = Literal{Bytes: l.Bytes, Complete: false}
	}
	return NewSeq(out...)
}
