// Package prefilter finds candidate match starts in byte input from the
// prefix literals of a pattern.
//
// A candidate is a position where one of the literals occurs. Every match
// starts at a candidate, so the interpreter can jump from one candidate to
// the next instead of stepping through positions that cannot start a match.
package prefilter

import (
	"fmt"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/regvm/literal"
	"github.com/coregx/regvm/simd"
)

// Prefilter reports candidate match starts.
type Prefilter interface {
	// Find returns the first candidate at or after at, or -1.
	Find(haystack []byte, at int) int

	// String names the strategy for logs and listings.
	String() string
}

// Builder selects a strategy for a literal set.
type Builder struct {
	prefixes *literal.Seq
}

// NewBuilder returns a builder for prefixes, as returned by
// literal.Extractor.ExtractPrefixes.
func NewBuilder(prefixes *literal.Seq) *Builder {
	return &Builder{prefixes: prefixes}
}

// Build returns the prefilter for the literals, or nil if they cannot
// narrow the search.
//
//   - one to three literals of one byte: Memchr, Memchr2 or Memchr3
//   - one longer literal: memchr on its first byte, then a prefix check
//   - anything else: an Aho-Corasick automaton
func (b *Builder) Build() Prefilter {
	seq := b.prefixes
	if seq == nil || seq.Len() == 0 || seq.HasEmpty() {
		return nil
	}
	lits := seq.Literals()

	if len(lits) <= 3 {
		single := true
		for _, l := range lits {
			if len(l.Bytes) != 1 {
				single = false
				break
			}
		}
		if single {
			m := &memchr{n: len(lits)}
			for i, l := range lits {
				m.needles[i] = l.Bytes[0]
			}
			return m
		}
	}
	if len(lits) == 1 {
		return &memmem{needle: lits[0].Bytes}
	}

	builder := ahocorasick.NewBuilder()
	for _, l := range lits {
		builder.AddPattern(l.Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &automaton{auto: auto, patterns: len(lits)}
}

type memchr struct {
	needles [3]byte
	n       int
}

func (m *memchr) Find(haystack []byte, at int) int {
	if at >= len(haystack) {
		return -1
	}
	var i int
	switch m.n {
	case 1:
		i = simd.Memchr(haystack[at:], m.needles[0])
	case 2:
		i = simd.Memchr2(haystack[at:], m.needles[0], m.needles[1])
	default:
		i = simd.Memchr3(haystack[at:], m.needles[0], m.needles[1], m.needles[2])
	}
	if i < 0 {
		return -1
	}
	return at + i
}

func (m *memchr) String() string {
	return fmt.Sprintf("memchr%q", m.needles[:m.n])
}

type memmem struct {
	needle []byte
}

func (m *memmem) Find(haystack []byte, at int) int {
	if at > len(haystack) {
		return -1
	}
	i := simd.Memmem(haystack[at:], m.needle)
	if i < 0 {
		return -1
	}
	return at + i
}

func (m *memmem) String() string {
	return fmt.Sprintf("memmem(%q)", m.needle)
}

type automaton struct {
	auto     *ahocorasick.Automaton
	patterns int
}

func (a *automaton) Find(haystack []byte, at int) int {
	if at > len(haystack) {
		return -1
	}
	m := a.auto.Find(haystack, at)
	if m == nil {
		return -1
	}
	return m.Start
}

func (a *automaton) String() string {
	return fmt.Sprintf("aho-corasick(%d patterns)", a.patterns)
}
