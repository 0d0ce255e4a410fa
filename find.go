package regvm

import (
	"context"

	"github.com/coregx/regvm/nfa"
)

// Match reports whether b contains a match.
func (r *Regex) Match(b []byte) bool {
	return r.FindIndex(b) != nil
}

// MatchString reports whether s contains a match.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// FindIndex returns the offsets of the leftmost match in b, or nil.
func (r *Regex) FindIndex(b []byte) []int {
	m := r.FindSubmatchIndex(b)
	if m == nil {
		return nil
	}
	return m[:2:2]
}

// Find returns the leftmost match in b, or nil.
func (r *Regex) Find(b []byte) []byte {
	loc := r.FindIndex(b)
	if loc == nil {
		return nil
	}
	return b[loc[0]:loc[1]:loc[1]]
}

// FindString returns the leftmost match in s, or "".
func (r *Regex) FindString(s string) string {
	loc := r.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// FindStringIndex returns the offsets of the leftmost match in s, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSubmatchIndex returns the offset pairs of the leftmost match and its
// groups in b, or nil. Groups that did not participate are -1.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	m := r.quiet(r.search(nil, b, 1))
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// FindStringSubmatchIndex is FindSubmatchIndex for a string.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindSubmatch returns the leftmost match in b and its groups, or nil.
// Groups that did not participate are nil.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	loc := r.FindSubmatchIndex(b)
	if loc == nil {
		return nil
	}
	out := make([][]byte, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = b[loc[2*i]:loc[2*i+1]:loc[2*i+1]]
		}
	}
	return out
}

// FindStringSubmatch returns the leftmost match in s and its groups, or
// nil. Groups that did not participate are "".
func (r *Regex) FindStringSubmatch(s string) []string {
	loc := r.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// FindAllSubmatchIndex returns the offsets of up to n successive matches
// in b and their groups; n < 0 returns all of them. The search resumes at
// the end of each match, one position later after an empty match.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	return r.quiet(r.search(nil, b, n))
}

// FindAllSubmatchIndexContext is FindAllSubmatchIndex with cancellation.
// The search is aborted once ctx is done; the error then wraps both
// nfa.ErrException and ctx.Err().
func (r *Regex) FindAllSubmatchIndexContext(ctx context.Context, b []byte, n int) ([][]int, error) {
	return r.search(nfa.ContextInterrupter(ctx), b, n)
}

// FindAllStringSubmatchIndex is FindAllSubmatchIndex for a string.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.FindAllSubmatchIndex([]byte(s), n)
}

// FindAllIndex returns the offsets of up to n successive matches in b.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	m := r.FindAllSubmatchIndex(b, n)
	for i := range m {
		m[i] = m[i][:2:2]
	}
	return m
}

// FindAllStringIndex is FindAllIndex for a string.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAll returns up to n successive matches in b.
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	locs := r.FindAllIndex(b, n)
	if locs == nil {
		return nil
	}
	out := make([][]byte, len(locs))
	for i, loc := range locs {
		out[i] = b[loc[0]:loc[1]:loc[1]]
	}
	return out
}

// FindAllString returns up to n successive matches in s.
func (r *Regex) FindAllString(s string, n int) []string {
	locs := r.FindAllStringIndex(s, n)
	if locs == nil {
		return nil
	}
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = s[loc[0]:loc[1]]
	}
	return out
}

// FindAllStringSubmatch returns up to n successive matches in s with their
// groups.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	locs := r.FindAllStringSubmatchIndex(s, n)
	if locs == nil {
		return nil
	}
	out := make([][]string, len(locs))
	for i, loc := range locs {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		out[i] = groups
	}
	return out
}

// Count returns the number of successive matches in b, up to n if n >= 0.
func (r *Regex) Count(b []byte, n int) int {
	return len(r.FindAllSubmatchIndex(b, n))
}

// FindUTF16Index returns the code unit offsets of the leftmost match in u,
// or nil.
func (r *Regex) FindUTF16Index(u []uint16) []int {
	m := r.quiet(r.searchUTF16(nil, u, 1))
	if len(m) == 0 {
		return nil
	}
	return m[0][:2:2]
}

// FindAllUTF16SubmatchIndex returns the code unit offsets of up to n
// successive matches in u and their groups.
func (r *Regex) FindAllUTF16SubmatchIndex(u []uint16, n int) [][]int {
	return r.quiet(r.searchUTF16(nil, u, n))
}

// FindAllUTF16SubmatchIndexContext is FindAllUTF16SubmatchIndex with
// cancellation.
func (r *Regex) FindAllUTF16SubmatchIndexContext(ctx context.Context, u []uint16, n int) ([][]int, error) {
	return r.searchUTF16(nfa.ContextInterrupter(ctx), u, n)
}
