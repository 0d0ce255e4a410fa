package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxRepeat bounds the explicit counts of {n,m} quantifiers.
const MaxRepeat = 1000

type parser struct {
	src   string
	pos   int
	flags Flags

	names     []string
	nameIndex map[string]int

	// From a pre-scan of the whole pattern.
	totalGroups int
	hasNamed    bool
}

// Parse parses pattern under the given flags.
func Parse(pattern string, flags Flags) (*Regexp, error) {
	p := &parser{
		src:       pattern,
		flags:     flags,
		names:     []string{""},
		nameIndex: make(map[string]int),
	}
	p.prescan()

	root, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		// Only a stray ')' stops the top-level disjunction early.
		return nil, p.errorf(ErrUnexpectedParen, nil)
	}
	return &Regexp{Root: root, Flags: flags, Pattern: pattern, Names: p.names}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(pattern string, flags Flags) *Regexp {
	re, err := Parse(pattern, flags)
	if err != nil {
		panic(err)
	}
	return re
}

func (p *parser) errorf(code ErrorCode, err error) *Error {
	return &Error{Code: code, Pos: p.pos, Pattern: p.src, Err: err}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() rune {
	if p.eof() {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) next() rune {
	r, n := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += n
	return r
}

func (p *parser) lookingAt(s string) bool {
	return len(p.src)-p.pos >= len(s) && p.src[p.pos:p.pos+len(s)] == s
}

// prescan counts capturing groups so decimal escapes can be told apart
// from legacy octal escapes.
func (p *parser) prescan() {
	s := p.src
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			for i++; i < len(s) && s[i] != ']'; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case '(':
			if i+1 < len(s) && s[i+1] == '?' {
				if i+3 < len(s) && s[i+2] == '<' && s[i+3] != '=' && s[i+3] != '!' {
					p.totalGroups++
					p.hasNamed = true
				}
				continue
			}
			p.totalGroups++
		}
	}
}

func (p *parser) parseDisjunction() (*Node, error) {
	var alts []*Node
	for {
		alt, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		if p.peek() != '|' {
			break
		}
		p.pos++
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &Node{Op: OpAlternate, Subs: alts}, nil
}

func (p *parser) parseAlternative() (*Node, error) {
	var terms []*Node
	for !p.eof() && p.peek() != '|' && p.peek() != ')' {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if term.Op == OpEmpty {
			continue
		}
		terms = append(terms, term)
	}
	switch len(terms) {
	case 0:
		return &Node{Op: OpEmpty}, nil
	case 1:
		return terms[0], nil
	}
	return &Node{Op: OpConcat, Subs: terms}, nil
}

func (p *parser) parseTerm() (*Node, error) {
	start := p.pos
	atom, quantifiable, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.atQuantifier() {
		return atom, nil
	}
	if !quantifiable {
		p.pos = start
		return nil, p.errorf(ErrNothingToRepeat, nil)
	}
	return p.parseQuantifier(atom)
}

// atQuantifier reports whether a quantifier starts at the cursor. A '{'
// that does not open a valid {n}, {n,} or {n,m} is a literal.
func (p *parser) atQuantifier() bool {
	switch p.peek() {
	case '*', '+', '?':
		return true
	case '{':
		_, _, n := p.scanBraces()
		return n > 0
	}
	return false
}

// scanBraces parses {n}, {n,} or {n,m} at the cursor without consuming it
// and returns the bounds and the length of the quantifier (0 if none).
func (p *parser) scanBraces() (lo, hi, n int) {
	i := p.pos + 1
	readInt := func() (int, bool) {
		start := i
		v := 0
		for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
			if v <= MaxRepeat {
				v = v*10 + int(p.src[i]-'0')
			}
			i++
		}
		return v, i > start
	}
	lo, ok := readInt()
	if !ok {
		return 0, 0, 0
	}
	hi = lo
	if i < len(p.src) && p.src[i] == ',' {
		i++
		hi = -1
		if v, ok := readInt(); ok {
			hi = v
		}
	}
	if i >= len(p.src) || p.src[i] != '}' {
		return 0, 0, 0
	}
	return lo, hi, i + 1 - p.pos
}

func (p *parser) parseQuantifier(atom *Node) (*Node, error) {
	start := p.pos
	var lo, hi int
	switch p.next() {
	case '*':
		lo, hi = 0, -1
	case '+':
		lo, hi = 1, -1
	case '?':
		lo, hi = 0, 1
	case '{':
		var n int
		p.pos = start
		lo, hi, n = p.scanBraces()
		p.pos += n
		if lo > MaxRepeat || hi > MaxRepeat {
			p.pos = start
			return nil, p.errorf(ErrRepeatTooLarge, nil)
		}
		if hi >= 0 && hi < lo {
			p.pos = start
			return nil, p.errorf(ErrInvalidRepeat, nil)
		}
	}
	greedy := true
	if p.peek() == '?' {
		p.pos++
		greedy = false
	}
	return &Node{Op: OpRepeat, Min: lo, Max: hi, Greedy: greedy, Subs: []*Node{atom}}, nil
}

// parseAtom parses one atom or assertion. Assertions and lookbehinds
// cannot be quantified; lookaheads can.
func (p *parser) parseAtom() (*Node, bool, error) {
	c := p.peek()
	switch c {
	case '^':
		p.pos++
		kind := AssertBegin
		if p.flags&Multiline != 0 {
			kind = AssertBeginLine
		}
		return &Node{Op: OpAssert, Assert: kind}, false, nil
	case '$':
		p.pos++
		kind := AssertEnd
		if p.flags&Multiline != 0 {
			kind = AssertEndLine
		}
		return &Node{Op: OpAssert, Assert: kind}, false, nil
	case '.':
		p.pos++
		if p.flags&DotAll != 0 {
			return &Node{Op: OpClass, Negate: true}, true, nil
		}
		return &Node{Op: OpClass, Ranges: lineTerminatorRanges, Negate: true}, true, nil
	case '(':
		return p.parseGroup()
	case '[':
		n, err := p.parseClass()
		return n, true, err
	case '\\':
		return p.parseAtomEscape()
	case '*', '+', '?':
		return nil, false, p.errorf(ErrNothingToRepeat, nil)
	case '{':
		if _, _, n := p.scanBraces(); n > 0 {
			return nil, false, p.errorf(ErrNothingToRepeat, nil)
		}
	}
	return p.literal(p.next()), true, nil
}

func (p *parser) literal(c rune) *Node {
	if p.flags&FoldCase != 0 {
		if orbit := foldOrbit(c); len(orbit) > 1 {
			ranges := make([]rune, 0, 2*len(orbit))
			for _, r := range orbit {
				ranges = append(ranges, r, r)
			}
			return &Node{Op: OpClass, Ranges: normalizeRanges(ranges)}
		}
	}
	return &Node{Op: OpLiteral, Rune: c}
}

func (p *parser) parseGroup() (*Node, bool, error) {
	open := p.pos
	p.pos++ // (

	var n *Node
	quantifiable := true
	switch {
	case p.lookingAt("?:"):
		p.pos += 2
		n = &Node{Op: OpConcat}
	case p.lookingAt("?="), p.lookingAt("?!"):
		n = &Node{Op: OpLookaround, Negate: p.src[p.pos+1] == '!'}
		p.pos += 2
	case p.lookingAt("?<="), p.lookingAt("?<!"):
		n = &Node{Op: OpLookaround, Behind: true, Negate: p.src[p.pos+2] == '!'}
		p.pos += 3
		quantifiable = false
	case p.lookingAt("?<"):
		p.pos += 2
		name, err := p.parseGroupName()
		if err != nil {
			return nil, false, err
		}
		n = p.newGroup(name)
	case p.lookingAt("?"):
		return nil, false, p.errorf(ErrInvalidGroupName, nil)
	default:
		n = p.newGroup("")
	}

	body, err := p.parseDisjunction()
	if err != nil {
		return nil, false, err
	}
	if p.peek() != ')' {
		p.pos = open
		return nil, false, p.errorf(ErrMissingParen, nil)
	}
	p.pos++

	if n.Op == OpConcat {
		// Non-capturing group: the body stands for itself.
		return body, quantifiable, nil
	}
	n.Subs = []*Node{body}
	return n, quantifiable, nil
}

func (p *parser) newGroup(name string) *Node {
	idx := len(p.names)
	p.names = append(p.names, name)
	if name != "" {
		p.nameIndex[name] = idx
	}
	return &Node{Op: OpGroup, Cap: idx, Name: name}
}

func (p *parser) parseGroupName() (string, error) {
	start := p.pos
	for !p.eof() && p.peek() != '>' {
		c := p.next()
		first := p.pos-utf8.RuneLen(c) == start
		if !isIdentRune(c, first) {
			p.pos = start
			return "", p.errorf(ErrInvalidGroupName, nil)
		}
	}
	if p.eof() || p.pos == start {
		p.pos = start
		return "", p.errorf(ErrInvalidGroupName, nil)
	}
	name := p.src[start:p.pos]
	p.pos++ // >
	if _, dup := p.nameIndex[name]; dup {
		p.pos = start
		return "", p.errorf(ErrDuplicateGroupName, fmt.Errorf("group %q", name))
	}
	return name, nil
}

func isIdentRune(c rune, first bool) bool {
	if c == '$' || c == '_' || unicode.IsLetter(c) {
		return true
	}
	return !first && (unicode.IsDigit(c) || c == 0x200C || c == 0x200D)
}

func (p *parser) parseAtomEscape() (*Node, bool, error) {
	start := p.pos
	p.pos++ // backslash
	if p.eof() {
		p.pos = start
		return nil, false, p.errorf(ErrTrailingBackslash, nil)
	}
	switch c := p.peek(); c {
	case 'b', 'B':
		p.pos++
		kind := AssertWordBoundary
		if c == 'B' {
			kind = AssertNotWordBoundary
		}
		return &Node{Op: OpAssert, Assert: kind}, false, nil
	case 'k':
		if p.hasNamed {
			p.pos = start
			return nil, false, p.errorf(ErrInvalidEscape, fmt.Errorf("backreference: %w", ErrUnsupported))
		}
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n := 0
		i := p.pos
		for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' && n <= p.totalGroups {
			n = n*10 + int(p.src[i]-'0')
			i++
		}
		if n <= p.totalGroups {
			p.pos = start
			return nil, false, p.errorf(ErrInvalidEscape, fmt.Errorf("backreference \\%d: %w", n, ErrUnsupported))
		}
	}
	if ranges, ok := p.parseClassEscape(); ok {
		return p.class(ranges, false), true, nil
	}
	r, err := p.parseCharacterEscape()
	if err != nil {
		return nil, false, err
	}
	return p.literal(r), true, nil
}

// parseClassEscape parses \d \D \w \W \s \S after the backslash.
func (p *parser) parseClassEscape() ([]rune, bool) {
	var ranges []rune
	switch p.peek() {
	case 'd':
		ranges = digitRanges
	case 'D':
		ranges = negateRanges(digitRanges, MaxUnit)
	case 'w':
		ranges = wordRanges
	case 'W':
		ranges = negateRanges(wordRanges, MaxUnit)
	case 's':
		ranges = spaceRanges
	case 'S':
		ranges = negateRanges(spaceRanges, MaxUnit)
	default:
		return nil, false
	}
	p.pos++
	return append([]rune(nil), ranges...), true
}

// parseCharacterEscape parses a single-character escape after the
// backslash, following the legacy (Annex B) grammar.
func (p *parser) parseCharacterEscape() (rune, error) {
	c := p.next()
	switch c {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case 'r':
		return '\r', nil
	case 'c':
		if l := p.peekAt(0); (l|0x20) >= 'a' && (l|0x20) <= 'z' {
			p.pos++
			return rune(l) % 32, nil
		}
		// \c without a letter is a literal backslash followed by 'c'.
		p.pos--
		return '\\', nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := c - '0'
		limit := 3
		if c >= '4' {
			limit = 2
		}
		for n := 1; n < limit; n++ {
			d := p.peekAt(0)
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + rune(d-'0')
			p.pos++
		}
		return v, nil
	case 'x':
		if v, ok := p.hex(2); ok {
			return v, nil
		}
		return 'x', nil
	case 'u':
		if v, ok := p.hex(4); ok {
			return v, nil
		}
		return 'u', nil
	}
	return c, nil
}

func (p *parser) hex(n int) (rune, bool) {
	if len(p.src)-p.pos < n {
		return 0, false
	}
	var v rune
	for i := 0; i < n; i++ {
		d := p.src[p.pos+i]
		switch {
		case d >= '0' && d <= '9':
			v = v*16 + rune(d-'0')
		case d >= 'a' && d <= 'f':
			v = v*16 + rune(d-'a'+10)
		case d >= 'A' && d <= 'F':
			v = v*16 + rune(d-'A'+10)
		default:
			return 0, false
		}
	}
	p.pos += n
	return v, true
}

func (p *parser) class(ranges []rune, negate bool) *Node {
	ranges = normalizeRanges(ranges)
	if p.flags&FoldCase != 0 {
		ranges = foldRanges(ranges)
	}
	return &Node{Op: OpClass, Ranges: ranges, Negate: negate}
}

func (p *parser) parseClass() (*Node, error) {
	open := p.pos
	p.pos++ // [
	negate := false
	if p.peek() == '^' {
		negate = true
		p.pos++
	}
	var ranges []rune
	for {
		if p.eof() {
			p.pos = open
			return nil, p.errorf(ErrMissingBracket, nil)
		}
		if p.peek() == ']' {
			p.pos++
			break
		}
		atomStart := p.pos
		lo, set, err := p.parseClassAtom()
		if err != nil {
			return nil, err
		}
		if p.peek() != '-' || p.peekAt(1) == ']' || p.pos+1 >= len(p.src) {
			ranges = appendClassAtom(ranges, lo, set)
			continue
		}
		p.pos++ // -
		hi, hiSet, err := p.parseClassAtom()
		if err != nil {
			return nil, err
		}
		if set != nil || hiSet != nil {
			// A class escape on either side makes the '-' literal.
			ranges = appendClassAtom(ranges, lo, set)
			ranges = append(ranges, '-', '-')
			ranges = appendClassAtom(ranges, hi, hiSet)
			continue
		}
		if lo > hi {
			p.pos = atomStart
			return nil, p.errorf(ErrInvalidClassRange, fmt.Errorf("%q > %q", lo, hi))
		}
		ranges = append(ranges, lo, hi)
	}
	return p.class(ranges, negate), nil
}

func appendClassAtom(ranges []rune, r rune, set []rune) []rune {
	if set != nil {
		return append(ranges, set...)
	}
	return append(ranges, r, r)
}

// parseClassAtom returns either a single rune or, for class escapes, a set.
func (p *parser) parseClassAtom() (rune, []rune, error) {
	if p.peek() != '\\' {
		return p.next(), nil, nil
	}
	start := p.pos
	p.pos++
	if p.eof() {
		p.pos = start
		return 0, nil, p.errorf(ErrTrailingBackslash, nil)
	}
	switch p.peek() {
	case 'b':
		p.pos++
		return '\b', nil, nil
	case '-':
		p.pos++
		return '-', nil, nil
	case 'B':
		p.pos = start
		return 0, nil, p.errorf(ErrInvalidEscape, nil)
	}
	if set, ok := p.parseClassEscape(); ok {
		return 0, set, nil
	}
	if c := p.peekAt(0); c == 'c' {
		// Inside a class \c also accepts digits and '_'.
		if d := p.peekAt(1); (d >= '0' && d <= '9') || d == '_' {
			p.pos += 2
			return rune(d) % 32, nil, nil
		}
	}
	if c := p.peekAt(0); c == '8' || c == '9' {
		p.pos++
		return rune(c), nil, nil
	}
	r, err := p.parseCharacterEscape()
	return r, nil, err
}
