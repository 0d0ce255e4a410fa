// Package compiler lowers parsed patterns to bytecode programs.
//
// A program consists of the main program, followed by one or two
// sub-programs per lookaround, plus a separate filter program:
//
//	main:    [unanchored prefix] SET_REGISTER_TO_CP 0; body; SET_REGISTER_TO_CP 1; ACCEPT
//	match:   START_LOOKAROUND; lazy any-unit loop; body (reversed, no registers); WRITE_LOOKAROUND_TABLE
//	capture: START_LOOKAROUND; CLEAR_REGISTER...; body (with registers); END_LOOKAROUND
//
// Lookarounds are numbered in pre-order, so nested lookarounds always have
// a higher index than the lookaround containing them. Capture sub-programs
// are only emitted for positive lookarounds that contain groups.
package compiler

import (
	"fmt"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/syntax"
)

// Config configures compilation.
type Config struct {
	// Encoding selects the code unit the program consumes.
	Encoding Encoding

	// MaxInstructions bounds the size of the main program plus
	// sub-programs. Default: 1 << 20.
	MaxInstructions int

	// MaxRecursionDepth bounds AST nesting.
	// Default: 1000
	MaxRecursionDepth int
}

// DefaultConfig returns a configuration for UTF-16 programs with default limits.
func DefaultConfig() Config {
	return Config{
		Encoding:          UTF16,
		MaxInstructions:   1 << 20,
		MaxRecursionDepth: 1000,
	}
}

type direction uint8

const (
	forward direction = iota
	backward
)

// Compiler turns syntax trees into bytecode programs. A Compiler is not
// safe for concurrent use.
type Compiler struct {
	config Config

	code  []bytecode.Instruction
	depth int

	// capturing is set while emitting code that records registers.
	capturing bool

	lookarounds []*syntax.Node
	lookIndex   map[*syntax.Node]int
	quantIndex  map[*syntax.Node]int
	hasCapture  map[*syntax.Node]bool
}

// NewCompiler creates a compiler with the given configuration.
func NewCompiler(config Config) *Compiler {
	def := DefaultConfig()
	if config.MaxInstructions == 0 {
		config.MaxInstructions = def.MaxInstructions
	}
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = def.MaxRecursionDepth
	}
	return &Compiler{config: config}
}

// Compile parses and compiles pattern.
func Compile(pattern string, flags syntax.Flags, config Config) (*bytecode.Program, error) {
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return NewCompiler(config).CompileRegexp(re)
}

// CompileRegexp compiles a parsed pattern.
func (c *Compiler) CompileRegexp(re *syntax.Regexp) (*bytecode.Program, error) {
	if c.config.Encoding > UTF16 || c.config.MaxInstructions < 0 || c.config.MaxRecursionDepth < 0 {
		return nil, &CompileError{Pattern: re.Pattern, Err: ErrInvalidConfig}
	}
	c.reset(re.Root)
	if len(c.lookarounds) > bytecode.MaxLookarounds {
		return nil, &CompileError{Pattern: re.Pattern, Err: ErrTooManyLookarounds}
	}

	if err := c.compileMain(re); err != nil {
		return nil, &CompileError{Pattern: re.Pattern, Err: err}
	}
	for idx := range c.lookarounds {
		if err := c.compileLookaround(idx); err != nil {
			return nil, &CompileError{Pattern: re.Pattern, Err: err}
		}
	}

	prog := &bytecode.Program{
		Code:          c.code,
		Filter:        c.filterProgram(re.Root),
		RegisterCount: 2 * len(re.Names),
		CaptureNames:  append([]string(nil), re.Names...),
	}
	if re.Flags&syntax.Sticky != 0 {
		prog.Flags |= bytecode.FlagSticky
	}
	if c.config.Encoding == UTF16 {
		prog.Flags |= bytecode.FlagUTF16
	}
	return prog, nil
}

// reset numbers lookarounds and capturing quantifiers in pre-order.
func (c *Compiler) reset(root *syntax.Node) {
	c.code = nil
	c.depth = 0
	c.lookarounds = nil
	c.lookIndex = make(map[*syntax.Node]int)
	c.quantIndex = make(map[*syntax.Node]int)
	c.hasCapture = make(map[*syntax.Node]bool)
	syntax.Walk(root, func(n *syntax.Node) bool {
		switch n.Op {
		case syntax.OpLookaround:
			c.lookIndex[n] = len(c.lookarounds)
			c.lookarounds = append(c.lookarounds, n)
			c.hasCapture[n] = syntax.HasCaptures(n.Subs[0])
		case syntax.OpRepeat:
			if syntax.HasCaptures(n.Subs[0]) {
				c.quantIndex[n] = len(c.quantIndex)
			}
		}
		return true
	})
}

func (c *Compiler) emit(inst bytecode.Instruction) int {
	c.code = append(c.code, inst)
	return len(c.code) - 1
}

func (c *Compiler) pc() int {
	return len(c.code)
}

// patch points the jump, fork or filter-child at pc to target.
func (c *Compiler) patch(pc, target int) {
	c.code[pc].Payload = uint32(target)
}

func (c *Compiler) compileMain(re *syntax.Regexp) error {
	c.capturing = true
	if re.Flags&syntax.Sticky == 0 {
		// Lazy any-unit prefix: starting here is preferred to consuming.
		fork := c.emit(bytecode.Fork(0))
		skip := c.emit(bytecode.Jmp(0))
		c.patch(fork, c.pc())
		c.emit(bytecode.ConsumeAny())
		c.emit(bytecode.Jmp(fork))
		c.patch(skip, c.pc())
	}
	c.emit(bytecode.SetRegisterToCP(0))
	if err := c.compile(re.Root, forward); err != nil {
		return err
	}
	c.emit(bytecode.SetRegisterToCP(1))
	c.emit(bytecode.Accept())
	return nil
}

func (c *Compiler) lookaroundRef(idx int) bytecode.LookaroundRef {
	n := c.lookarounds[idx]
	ref := bytecode.LookaroundRef{Index: idx, Positive: !n.Negate}
	if n.Behind {
		ref.Kind = bytecode.Lookbehind
	}
	return ref
}

func (c *Compiler) compileLookaround(idx int) error {
	n := c.lookarounds[idx]
	ref := c.lookaroundRef(idx)

	// The match sub-program scans the whole input against the lookaround's
	// direction and marks every position where the body matches.
	natural, reversed := forward, backward
	if n.Behind {
		natural, reversed = backward, forward
	}
	c.capturing = false
	c.emit(bytecode.StartLookaround(ref))
	fork := c.emit(bytecode.Fork(0))
	skip := c.emit(bytecode.Jmp(0))
	c.patch(fork, c.pc())
	c.emit(bytecode.ConsumeAny())
	c.emit(bytecode.Jmp(fork))
	c.patch(skip, c.pc())
	if err := c.compile(n.Subs[0], reversed); err != nil {
		return err
	}
	c.emit(bytecode.WriteLookaroundTable(ref))

	if n.Negate || !c.hasCapture[n] {
		return nil
	}
	c.capturing = true
	c.emit(bytecode.StartLookaround(ref))
	syntax.Walk(n.Subs[0], func(sub *syntax.Node) bool {
		switch sub.Op {
		case syntax.OpLookaround:
			return false
		case syntax.OpGroup:
			c.emit(bytecode.ClearRegister(2 * sub.Cap))
			c.emit(bytecode.ClearRegister(2*sub.Cap + 1))
		}
		return true
	})
	if err := c.compile(n.Subs[0], natural); err != nil {
		return err
	}
	c.emit(bytecode.EndLookaround(ref))
	return nil
}

func (c *Compiler) compile(n *syntax.Node, dir direction) error {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxRecursionDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.config.MaxRecursionDepth)
	}
	if len(c.code) > c.config.MaxInstructions {
		return fmt.Errorf("%w: more than %d instructions", ErrTooComplex, c.config.MaxInstructions)
	}

	switch n.Op {
	case syntax.OpEmpty:
		return nil
	case syntax.OpLiteral:
		c.compileLiteral(n.Rune, dir)
		return nil
	case syntax.OpClass:
		c.compileClass(n, dir)
		return nil
	case syntax.OpAssert:
		c.emit(bytecode.Assertion(assertionKind(n.Assert)))
		return nil
	case syntax.OpGroup:
		return c.compileGroup(n, dir)
	case syntax.OpConcat:
		for i := range n.Subs {
			sub := n.Subs[i]
			if dir == backward {
				sub = n.Subs[len(n.Subs)-1-i]
			}
			if err := c.compile(sub, dir); err != nil {
				return err
			}
		}
		return nil
	case syntax.OpAlternate:
		return c.compileAlternate(n.Subs, dir)
	case syntax.OpRepeat:
		return c.compileRepeat(n, dir)
	case syntax.OpLookaround:
		c.emit(bytecode.ReadLookaroundTable(c.lookaroundRef(c.lookIndex[n])))
		return nil
	default:
		return fmt.Errorf("unknown node %s", n.Op)
	}
}

func assertionKind(k syntax.AssertKind) bytecode.AssertionKind {
	switch k {
	case syntax.AssertBegin:
		return bytecode.AssertStartOfInput
	case syntax.AssertEnd:
		return bytecode.AssertEndOfInput
	case syntax.AssertBeginLine:
		return bytecode.AssertStartOfLine
	case syntax.AssertEndLine:
		return bytecode.AssertEndOfLine
	case syntax.AssertWordBoundary:
		return bytecode.AssertWordBoundary
	default:
		return bytecode.AssertNonWordBoundary
	}
}

// never emits a range no code unit satisfies.
func (c *Compiler) never() {
	c.emit(bytecode.Instruction{Op: bytecode.OpConsumeRange, Payload: 1})
}

func (c *Compiler) compileLiteral(r rune, dir direction) {
	units, ok := c.config.Encoding.units(r)
	if !ok {
		c.never()
		return
	}
	if dir == backward && len(units) == 2 {
		units[0], units[1] = units[1], units[0]
	}
	for _, u := range units {
		c.emit(bytecode.ConsumeRange(u, u))
	}
}

func (c *Compiler) compileClass(n *syntax.Node, dir direction) {
	seqs := c.config.Encoding.classSequences(n.Ranges, n.Negate)
	if len(seqs) == 0 {
		c.never()
		return
	}
	var exits []int
	for i, seq := range seqs {
		fork := -1
		if i < len(seqs)-1 {
			fork = c.emit(bytecode.Fork(0))
		}
		for j := range seq {
			r := seq[j]
			if dir == backward {
				r = seq[len(seq)-1-j]
			}
			c.emit(bytecode.ConsumeRange(r.lo, r.hi))
		}
		if fork >= 0 {
			exits = append(exits, c.emit(bytecode.Jmp(0)))
			c.patch(fork, c.pc())
		}
	}
	for _, pc := range exits {
		c.patch(pc, c.pc())
	}
}

func (c *Compiler) compileGroup(n *syntax.Node, dir direction) error {
	if !c.capturing {
		return c.compile(n.Subs[0], dir)
	}
	first, last := 2*n.Cap, 2*n.Cap+1
	if dir == backward {
		first, last = last, first
	}
	c.emit(bytecode.SetRegisterToCP(first))
	if err := c.compile(n.Subs[0], dir); err != nil {
		return err
	}
	c.emit(bytecode.SetRegisterToCP(last))
	return nil
}

// compileAlternate emits a fork chain; earlier alternatives continue on
// the higher priority branch.
func (c *Compiler) compileAlternate(alts []*syntax.Node, dir direction) error {
	var exits []int
	for i, alt := range alts {
		fork := -1
		if i < len(alts)-1 {
			fork = c.emit(bytecode.Fork(0))
		}
		if err := c.compile(alt, dir); err != nil {
			return err
		}
		if fork >= 0 {
			exits = append(exits, c.emit(bytecode.Jmp(0)))
			c.patch(fork, c.pc())
		}
	}
	for _, pc := range exits {
		c.patch(pc, c.pc())
	}
	return nil
}

// compileRepeat unrolls the mandatory iterations and guards every optional
// one with BEGIN_LOOP/END_LOOP so empty iterations are rejected.
func (c *Compiler) compileRepeat(n *syntax.Node, dir direction) error {
	q, hasID := c.quantIndex[n]
	iteration := func() error {
		if hasID && c.capturing {
			c.emit(bytecode.SetQuantifierToClock(q))
		}
		return c.compile(n.Subs[0], dir)
	}
	optional := func() error {
		c.emit(bytecode.BeginLoop())
		if err := iteration(); err != nil {
			return err
		}
		c.emit(bytecode.EndLoop())
		return nil
	}

	for i := 0; i < n.Min; i++ {
		if err := iteration(); err != nil {
			return err
		}
	}

	if n.Max < 0 {
		loop := c.emit(bytecode.Fork(0))
		if n.Greedy {
			if err := optional(); err != nil {
				return err
			}
			c.emit(bytecode.Jmp(loop))
			c.patch(loop, c.pc())
			return nil
		}
		skip := c.emit(bytecode.Jmp(0))
		c.patch(loop, c.pc())
		if err := optional(); err != nil {
			return err
		}
		c.emit(bytecode.Jmp(loop))
		c.patch(skip, c.pc())
		return nil
	}

	var exits []int
	for i := n.Min; i < n.Max; i++ {
		if n.Greedy {
			exits = append(exits, c.emit(bytecode.Fork(0)))
		} else {
			fork := c.emit(bytecode.Fork(0))
			exits = append(exits, c.emit(bytecode.Jmp(0)))
			c.patch(fork, c.pc())
		}
		if err := optional(); err != nil {
			return err
		}
	}
	for _, pc := range exits {
		c.patch(pc, c.pc())
	}
	return nil
}
