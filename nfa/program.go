package nfa

import (
	"fmt"

	"github.com/coregx/regvm/bytecode"
)

// Register and clock sentinels.
const (
	UndefinedRegister int32  = -1
	UndefinedClock    uint64 = 0
)

// threadHeaderSize approximates the fixed per-thread bookkeeping in bytes.
const threadHeaderSize = 16

// lookaround describes one lookaround of a program, derived from its
// START_LOOKAROUND headers.
type lookaround struct {
	kind     bytecode.LookaroundKind
	positive bool

	// matchPC is the first instruction of the match sub-program.
	matchPC int

	// capturePC is the first instruction of the capture sub-program, or -1.
	capturePC int

	// Constructs written by the capture sub-program, merged into the
	// winning thread after a replay.
	regs        []int
	quantifiers []int
	nested      []int

	// maxLen is the longest body match in code units, or -1 if unbounded.
	maxLen int
}

// Program is a validated, immutable program ready for execution. It is safe
// for concurrent use by multiple interpreters.
type Program struct {
	code   []bytecode.Instruction
	filter []bytecode.Instruction

	registerCount   int
	quantifierCount int
	lookarounds     []lookaround

	// mainEnd is the pc of the first lookaround header (or len(code)).
	mainEnd int

	// onlyCapturelessLookbehinds selects the lane-based lookaround path.
	onlyCapturelessLookbehinds bool

	// warmup is how far before the search start the lanes begin, or -1 to
	// start at the beginning of the input.
	warmup int

	memoryPerThread int
}

// Load decodes and validates a program from its wire form.
func Load(code, filter []byte, registerCount int) (*Program, error) {
	insts, err := bytecode.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: code: %w", ErrInvalidProgram, err)
	}
	finsts, err := bytecode.Decode(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %w", ErrInvalidProgram, err)
	}
	return newProgram(insts, finsts, registerCount)
}

// NewProgram validates a compiled program.
func NewProgram(p *bytecode.Program) (*Program, error) {
	return newProgram(p.Code, p.Filter, p.RegisterCount)
}

func newProgram(code, filter []bytecode.Instruction, registerCount int) (*Program, error) {
	if registerCount < 2 || registerCount%2 != 0 {
		return nil, &ProgramError{PC: -1, Message: fmt.Sprintf("register count %d must be even and at least 2", registerCount)}
	}
	p := &Program{
		code:          code,
		filter:        filter,
		registerCount: registerCount,
		mainEnd:       len(code),
	}
	if err := p.scanLookarounds(); err != nil {
		return nil, err
	}
	if p.mainEnd == 0 {
		return nil, &ProgramError{PC: -1, Message: "empty main program"}
	}
	if err := p.validateCode(); err != nil {
		return nil, err
	}
	if err := p.validateFilter(); err != nil {
		return nil, err
	}
	p.analyze()

	captures := registerCount / 2
	p.memoryPerThread = registerCount*4 + p.quantifierCount*8 + captures*8 +
		len(p.lookarounds)*(8+4) + threadHeaderSize
	return p, nil
}

// scanLookarounds derives lookaround descriptors from the headers: the
// first header of an index opens its match sub-program, the second its
// capture sub-program.
func (p *Program) scanLookarounds() error {
	seen := make(map[int]int)
	for pc, inst := range p.code {
		if inst.Op != bytecode.OpStartLookaround {
			continue
		}
		if p.mainEnd == len(p.code) {
			p.mainEnd = pc
		}
		ref := inst.Lookaround()
		switch seen[ref.Index] {
		case 0:
			if ref.Index != len(p.lookarounds) {
				return &ProgramError{PC: pc, Message: fmt.Sprintf("lookaround %d declared out of order", ref.Index)}
			}
			p.lookarounds = append(p.lookarounds, lookaround{
				kind:      ref.Kind,
				positive:  ref.Positive,
				matchPC:   pc + 1,
				capturePC: -1,
			})
		case 1:
			la := &p.lookarounds[ref.Index]
			if !ref.Positive || la.kind != ref.Kind || !la.positive {
				return &ProgramError{PC: pc, Message: "capture sub-program on a negative or mismatched lookaround"}
			}
			la.capturePC = pc + 1
		default:
			return &ProgramError{PC: pc, Message: fmt.Sprintf("lookaround %d has more than two sub-programs", ref.Index)}
		}
		seen[ref.Index]++
	}
	return nil
}

// segmentEnd returns the end of the sub-program starting at pc.
func (p *Program) segmentEnd(pc int) int {
	for ; pc < len(p.code); pc++ {
		if p.code[pc].Op == bytecode.OpStartLookaround {
			return pc
		}
	}
	return pc
}

func (p *Program) validateCode() error {
	for pc, inst := range p.code {
		fail := func(format string, args ...any) error {
			return &ProgramError{PC: pc, Message: fmt.Sprintf(format, args...)}
		}
		switch inst.Op {
		case bytecode.OpFork, bytecode.OpJmp:
			if inst.Target() >= len(p.code) {
				return fail("jump target %d out of range", inst.Target())
			}
			if p.code[inst.Target()].Op == bytecode.OpStartLookaround {
				return fail("jump to lookaround header %d", inst.Target())
			}
		case bytecode.OpSetRegisterToCP, bytecode.OpClearRegister:
			if inst.Index() >= p.registerCount {
				return fail("register %d out of range", inst.Index())
			}
		case bytecode.OpSetQuantifierToClock:
			p.quantifierCount = max(p.quantifierCount, inst.Index()+1)
		case bytecode.OpReadLookaroundTable, bytecode.OpWriteLookaroundTable, bytecode.OpEndLookaround:
			ref := inst.Lookaround()
			if ref.Index >= len(p.lookarounds) {
				return fail("unknown lookaround %d", ref.Index)
			}
			if la := p.lookarounds[ref.Index]; la.kind != ref.Kind {
				return fail("lookaround %d used as %s", ref.Index, ref.Kind)
			}
		case bytecode.OpAssertion:
			if inst.Assertion() > bytecode.AssertNonWordBoundary {
				return fail("unknown assertion %d", inst.Assertion())
			}
		case bytecode.OpConsumeRange, bytecode.OpAccept, bytecode.OpBeginLoop,
			bytecode.OpEndLoop, bytecode.OpStartLookaround:
		default:
			return fail("%s not allowed in code", inst.Op)
		}
		if pc == len(p.code)-1 || p.code[pc+1].Op == bytecode.OpStartLookaround {
			switch inst.Op {
			case bytecode.OpAccept, bytecode.OpJmp, bytecode.OpWriteLookaroundTable, bytecode.OpEndLookaround:
			default:
				if inst.Op != bytecode.OpStartLookaround {
					return fail("sub-program falls off its end")
				}
			}
		}
	}
	return nil
}

func (p *Program) validateFilter() error {
	for pc, inst := range p.filter {
		fail := func(format string, args ...any) error {
			return &ProgramError{PC: pc, Filter: true, Message: fmt.Sprintf(format, args...)}
		}
		switch inst.Op {
		case bytecode.OpFilterChild:
			t := inst.Target()
			if t <= pc || t >= len(p.filter) || p.filter[t].Op == bytecode.OpFilterChild {
				return fail("child %d is not a later node header", t)
			}
		case bytecode.OpFilterGroup:
			if inst.Index() >= p.registerCount/2 {
				return fail("group %d out of range", inst.Index())
			}
		case bytecode.OpFilterQuantifier:
			p.quantifierCount = max(p.quantifierCount, inst.Index()+1)
		case bytecode.OpFilterLookaround:
			if inst.Index() >= len(p.lookarounds) {
				return fail("lookaround %d out of range", inst.Index())
			}
		default:
			return fail("%s not allowed in filter", inst.Op)
		}
	}
	return nil
}

// analyze computes capture-merge sets, lookbehind lengths and the path
// selection flag.
func (p *Program) analyze() {
	p.onlyCapturelessLookbehinds = true
	p.warmup = 0
	for i := range p.lookarounds {
		la := &p.lookarounds[i]
		if la.kind == bytecode.Lookahead || la.capturePC >= 0 {
			p.onlyCapturelessLookbehinds = false
		}
		la.maxLen = p.longestMatch(la.matchPC)
		if la.kind == bytecode.Lookbehind && p.warmup >= 0 {
			if la.maxLen < 0 {
				p.warmup = -1
			} else {
				p.warmup += la.maxLen
			}
		}
		if la.capturePC < 0 {
			continue
		}
		regs := make(map[int]bool)
		quants := make(map[int]bool)
		nested := make(map[int]bool)
		for pc := la.capturePC; pc < p.segmentEnd(la.capturePC); pc++ {
			inst := p.code[pc]
			switch inst.Op {
			case bytecode.OpSetRegisterToCP, bytecode.OpClearRegister:
				if !regs[inst.Index()] {
					regs[inst.Index()] = true
					la.regs = append(la.regs, inst.Index())
				}
			case bytecode.OpSetQuantifierToClock:
				if !quants[inst.Index()] {
					quants[inst.Index()] = true
					la.quantifiers = append(la.quantifiers, inst.Index())
				}
			case bytecode.OpReadLookaroundTable:
				if id := inst.Lookaround().Index; !nested[id] {
					nested[id] = true
					la.nested = append(la.nested, id)
				}
			}
		}
	}
}

// longestMatch returns the maximum number of code units the body of a
// match sub-program can consume, or -1 if it is unbounded. The sub-program
// starts with a FORK/JMP any-unit loop whose JMP target is the body.
func (p *Program) longestMatch(matchPC int) int {
	end := p.segmentEnd(matchPC)
	if matchPC+1 >= end || p.code[matchPC].Op != bytecode.OpFork || p.code[matchPC+1].Op != bytecode.OpJmp {
		return -1
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int]uint8)
	memo := make(map[int]int)
	var walk func(pc int) int
	walk = func(pc int) int {
		if pc >= end {
			return -1
		}
		switch state[pc] {
		case visiting:
			return -1
		case done:
			return memo[pc]
		}
		state[pc] = visiting
		inst := p.code[pc]
		n := 0
		switch inst.Op {
		case bytecode.OpWriteLookaroundTable:
			n = 0
		case bytecode.OpConsumeRange:
			if n = walk(pc + 1); n >= 0 {
				n++
			}
		case bytecode.OpJmp:
			n = walk(inst.Target())
		case bytecode.OpFork:
			a, b := walk(pc+1), walk(inst.Target())
			if a < 0 || b < 0 {
				n = -1
			} else {
				n = max(a, b)
			}
		default:
			n = walk(pc + 1)
		}
		state[pc] = done
		memo[pc] = n
		return n
	}
	return walk(p.code[matchPC+1].Target())
}

// RegisterCount returns the number of registers per match.
func (p *Program) RegisterCount() int {
	return p.registerCount
}

// LookaroundCount returns the number of lookarounds.
func (p *Program) LookaroundCount() int {
	return len(p.lookarounds)
}

// UsesLanes reports whether lookarounds are evaluated by lanes stepped
// alongside the main search rather than by precomputed tables.
func (p *Program) UsesLanes() bool {
	return len(p.lookarounds) > 0 && p.onlyCapturelessLookbehinds
}

// MemoryPerThread returns the bytes accounted for each live thread.
func (p *Program) MemoryPerThread() int {
	return p.memoryPerThread
}
