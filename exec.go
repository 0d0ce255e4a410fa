package regvm

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/simd"
)

// matchChunk is the number of matches requested per FindMatches call.
const matchChunk = 64

// options builds interpreter options for one search. A nil interrupter
// disables polling.
func (r *Regex) options(in nfa.Interrupter) nfa.Options {
	return nfa.Options{
		Origin:      r.config.Origin,
		Interrupter: in,
		MaxMemory:   r.config.MaxMemory,
		Logger:      r.log,
	}
}

// search returns up to n matches in b (all if n < 0) as byte offsets.
func (r *Regex) search(in nfa.Interrupter, b []byte, n int) ([][]int, error) {
	opts := r.options(in)
	if r.latin1 != nil && simd.IsASCII(b) {
		if r.prefilter != nil {
			opts.Candidates = func(at int) int { return r.prefilter.Find(b, at) }
		}
		m, err := findAll(r.latin1, b, n, opts, nil)
		return widen(m, nil), err
	}
	units, offsets := transcode(b)
	m, err := findAll(r.utf16, units, n, opts, offsets.keeper())
	return widen(m, offsets), err
}

// searchUTF16 returns up to n matches in u as code unit offsets.
func (r *Regex) searchUTF16(in nfa.Interrupter, u []uint16, n int) ([][]int, error) {
	m, err := findAll(r.utf16, u, n, r.options(in), nil)
	return widen(m, nil), err
}

// quiet adapts a search result for the methods without an error result:
// an aborted search reports no match.
func (r *Regex) quiet(matches [][]int, err error) [][]int {
	if err != nil {
		r.log.Warn("search failed", zap.String("pattern", r.pattern), zap.Error(err))
		return nil
	}
	return matches
}

// findAll collects matches chunk by chunk from one interpreter, so
// lookaround tables are built once per input. An interrupted chunk is
// retried after the interrupt has been handled. Matches for which keep
// reports false are dropped and do not count toward n.
func findAll[U nfa.Unit](prog *nfa.Program, input []U, n int, opts nfa.Options, keep func(m []int32) bool) ([][]int32, error) {
	if n == 0 {
		return nil, nil
	}
	ip := nfa.New(prog, input, opts)
	regs := prog.RegisterCount()
	out := make([]int32, matchChunk*regs)

	var matches [][]int32
	for {
		want := matchChunk
		if n > 0 {
			want = min(want, n-len(matches))
		}
		count, err := ip.FindMatches(out, want)
		if errors.Is(err, nfa.ErrRetry) {
			if herr := opts.Interrupter.HandleInterrupts(); herr != nil {
				return nil, fmt.Errorf("%w: %w", nfa.ErrException, herr)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		var last []int32
		for i := 0; i < count; i++ {
			last = out[i*regs : (i+1)*regs]
			if keep != nil && !keep(last) {
				continue
			}
			matches = append(matches, append([]int32(nil), last...))
		}
		if count < want || len(matches) == n {
			return matches, nil
		}
		next := int(last[1])
		if last[1] == last[0] {
			next++
		}
		if next > len(input) {
			return matches, nil
		}
		ip.Reset(next)
	}
}

// widen converts registers to ints, mapping code unit offsets to byte
// offsets when offsets is set. Undefined registers stay -1.
func widen(matches [][]int32, offsets *unitOffsets) [][]int {
	if matches == nil {
		return nil
	}
	out := make([][]int, len(matches))
	for i, m := range matches {
		w := make([]int, len(m))
		for j, v := range m {
			switch {
			case v < 0:
				w[j] = -1
			case offsets == nil:
				w[j] = int(v)
			case j%2 == 0:
				w[j] = offsets.starts[v]
			default:
				w[j] = offsets.ends[v]
			}
		}
		out[i] = w
	}
	return out
}

// unitOffsets maps UTF-16 code unit positions back to byte offsets. The
// position between the two units of a surrogate pair has no byte offset:
// as the start of a group it maps to the start of the rune, as the end of
// a group to its end. Everywhere else starts and ends agree.
type unitOffsets struct {
	starts []int
	ends   []int
}

func (o *unitOffsets) split(pos int32) bool {
	return o.starts[pos] != o.ends[pos]
}

// keeper returns a filter for successive matches that drops those starting
// inside a surrogate pair when, in bytes, they would be empty or overlap
// the match kept before them.
func (o *unitOffsets) keeper() func(m []int32) bool {
	prevEnd := int32(-1)
	return func(m []int32) bool {
		if o.split(m[0]) && (m[0] == m[1] || m[0] == prevEnd) {
			return false
		}
		prevEnd = m[1]
		return true
	}
}

// transcode decodes UTF-8 to UTF-16 code units. Invalid bytes decode to
// U+FFFD one byte at a time.
func transcode(b []byte) (units []uint16, offsets *unitOffsets) {
	units = make([]uint16, 0, len(b))
	offsets = &unitOffsets{
		starts: make([]int, 0, len(b)+1),
		ends:   make([]int, 0, len(b)+1),
	}
	for i := 0; i < len(b); {
		c, size := utf8.DecodeRune(b[i:])
		if c >= 0x10000 {
			hi, lo := utf16.EncodeRune(c)
			units = append(units, uint16(hi), uint16(lo)) //nolint:gosec // surrogates fit in 16 bits
			offsets.starts = append(offsets.starts, i, i)
			offsets.ends = append(offsets.ends, i, i+size)
		} else {
			units = append(units, uint16(c)) //nolint:gosec // c < 0x10000
			offsets.starts = append(offsets.starts, i)
			offsets.ends = append(offsets.ends, i)
		}
		i += size
	}
	offsets.starts = append(offsets.starts, len(b))
	offsets.ends = append(offsets.ends, len(b))
	return units, offsets
}
