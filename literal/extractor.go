package literal

import "github.com/coregx/regvm/syntax"

// Config bounds extraction.
type Config struct {
	// MaxLiterals bounds the size of a sequence. Default: 64.
	MaxLiterals int

	// MaxLiteralLen bounds the length of each literal. Default: 32.
	MaxLiteralLen int

	// MaxClassSize bounds the classes expanded into one literal per byte.
	// Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extraction limits.
func DefaultConfig() Config {
	return Config{
		MaxLiterals:   64,
		MaxLiteralLen: 32,
		MaxClassSize:  10,
	}
}

// Extractor computes prefix literals of parsed patterns.
type Extractor struct {
	config Config
}

// New returns an extractor using config.
func New(config Config) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes returns the ASCII literals every match of re starts with,
// or nil when matches can start with anything. The result is minimized.
func (e *Extractor) ExtractPrefixes(re *syntax.Regexp) *Seq {
	seq := e.prefixes(re.Root)
	if seq == nil || seq.HasEmpty() {
		return nil
	}
	seq.Minimize()
	return seq
}

func (e *Extractor) prefixes(n *syntax.Node) *Seq {
	switch n.Op {
	case syntax.OpEmpty, syntax.OpAssert:
		return NewSeq(Literal{Bytes: []byte{}, Complete: true})

	case syntax.OpLiteral:
		if n.Rune >= 0x80 {
			return nil
		}
		return NewSeq(Literal{Bytes: []byte{byte(n.Rune)}, Complete: true})

	case syntax.OpClass:
		return e.class(n)

	case syntax.OpGroup:
		return e.prefixes(n.Subs[0])

	case syntax.OpConcat:
		seq := NewSeq(Literal{Bytes: []byte{}, Complete: true})
		for _, sub := range n.Subs {
			seq = cross(seq, e.prefixes(sub), e.config.MaxLiterals, e.config.MaxLiteralLen)
			if !anyComplete(seq) {
				break
			}
		}
		return seq

	case syntax.OpAlternate:
		var seq *Seq
		for i, sub := range n.Subs {
			s := e.prefixes(sub)
			if i == 0 {
				seq = s
				continue
			}
			seq = union(seq, s, e.config.MaxLiterals)
			if seq == nil {
				return nil
			}
		}
		return seq

	case syntax.OpRepeat:
		if n.Min == 0 {
			return nil
		}
		sub := e.prefixes(n.Subs[0])
		if n.Min == 1 && n.Max == 1 {
			return sub
		}
		return inexact(sub)
	}
	// Lookarounds constrain the surrounding input, not the match.
	return nil
}

func (e *Extractor) class(n *syntax.Node) *Seq {
	if n.Negate {
		return nil
	}
	size := 0
	for i := 0; i < len(n.Ranges); i += 2 {
		if n.Ranges[i+1] >= 0x80 {
			return nil
		}
		size += int(n.Ranges[i+1]-n.Ranges[i]) + 1
	}
	if size == 0 || size > e.config.MaxClassSize {
		return nil
	}
	lits := make([]Literal, 0, size)
	for i := 0; i < len(n.Ranges); i += 2 {
		for c := n.Ranges[i]; c <= n.Ranges[i+1]; c++ {
			lits = append(lits, Literal{Bytes: []byte{byte(c)}, Complete: true})
		}
	}
	return NewSeq(lits...)
}

func anyComplete(s *Seq) bool {
	for _, l := range s.Literals() {
		if l.Complete {
			return true
		}
	}
	return false
}
