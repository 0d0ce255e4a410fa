// Package bytecode defines the instruction set executed by the NFA interpreter,
// its 8-byte wire encoding and the program container produced by the compiler.
//
// An instruction is an opcode plus a 32-bit payload whose meaning depends on
// the opcode (jump target, register index, packed code unit range, ...).
// Programs are plain instruction slices addressed by pc; the interpreter never
// holds pointers into them.
package bytecode

import (
	"fmt"
)

// Opcode identifies the operation performed by an instruction.
type Opcode uint8

const (
	// OpConsumeRange consumes one code unit in [min, max]; the thread blocks
	// until the next unit is available.
	OpConsumeRange Opcode = iota

	// OpAssertion checks a zero-width condition at the current position.
	OpAssertion

	// OpFork continues at pc+1 and spawns a lower priority thread at the target.
	OpFork

	// OpJmp continues at the target.
	OpJmp

	// OpAccept reports a match for the current thread.
	OpAccept

	// OpBeginLoop clears the thread's consumed-since-loop flag.
	OpBeginLoop

	// OpEndLoop kills the thread unless it consumed input since OpBeginLoop.
	OpEndLoop

	// OpSetRegisterToCP stores the current position into a register.
	OpSetRegisterToCP

	// OpClearRegister resets a register to UndefinedRegister.
	OpClearRegister

	// OpSetQuantifierToClock records the current clock for a quantifier.
	OpSetQuantifierToClock

	// OpStartLookaround introduces a lookaround sub-program. Never executed.
	OpStartLookaround

	// OpEndLookaround terminates a lookaround capture sub-program (acts as accept).
	OpEndLookaround

	// OpWriteLookaroundTable marks the lookaround as matching at the current position.
	OpWriteLookaroundTable

	// OpReadLookaroundTable continues only if the lookaround result at the
	// current position equals the instruction's polarity.
	OpReadLookaroundTable

	// OpFilterChild descends into a nested construct of the filter program.
	OpFilterChild

	// OpFilterGroup admits a capture group if its clock is recent enough.
	OpFilterGroup

	// OpFilterQuantifier admits a quantifier's last iteration and raises the clock.
	OpFilterQuantifier

	// OpFilterLookaround admits a lookaround's captures.
	OpFilterLookaround

	opcodeCount
)

// String returns a human-readable representation of the opcode
func (op Opcode) String() string {
	switch op {
	case OpConsumeRange:
		return "CONSUME_RANGE"
	case OpAssertion:
		return "ASSERTION"
	case OpFork:
		return "FORK"
	case OpJmp:
		return "JMP"
	case OpAccept:
		return "ACCEPT"
	case OpBeginLoop:
		return "BEGIN_LOOP"
	case OpEndLoop:
		return "END_LOOP"
	case OpSetRegisterToCP:
		return "SET_REGISTER_TO_CP"
	case OpClearRegister:
		return "CLEAR_REGISTER"
	case OpSetQuantifierToClock:
		return "SET_QUANTIFIER_TO_CLOCK"
	case OpStartLookaround:
		return "START_LOOKAROUND"
	case OpEndLookaround:
		return "END_LOOKAROUND"
	case OpWriteLookaroundTable:
		return "WRITE_LOOKAROUND_TABLE"
	case OpReadLookaroundTable:
		return "READ_LOOKAROUND_TABLE"
	case OpFilterChild:
		return "FILTER_CHILD"
	case OpFilterGroup:
		return "FILTER_GROUP"
	case OpFilterQuantifier:
		return "FILTER_QUANTIFIER"
	case OpFilterLookaround:
		return "FILTER_LOOKAROUND"
	default:
		return fmt.Sprintf("Unknown(%d)", op)
	}
}

// IsFilter reports whether the opcode belongs to the filter program.
func (op Opcode) IsFilter() bool {
	return op >= OpFilterChild && op < opcodeCount
}

// AssertionKind is the payload of OpAssertion.
type AssertionKind uint32

const (
	AssertStartOfInput AssertionKind = iota
	AssertEndOfInput
	AssertStartOfLine
	AssertEndOfLine
	AssertWordBoundary
	AssertNonWordBoundary
)

// String returns a human-readable representation of the assertion kind
func (k AssertionKind) String() string {
	switch k {
	case AssertStartOfInput:
		return "START_OF_INPUT"
	case AssertEndOfInput:
		return "END_OF_INPUT"
	case AssertStartOfLine:
		return "START_OF_LINE"
	case AssertEndOfLine:
		return "END_OF_LINE"
	case AssertWordBoundary:
		return "BOUNDARY"
	case AssertNonWordBoundary:
		return "NON_BOUNDARY"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// LookaroundKind tells in which direction a lookaround body matches.
type LookaroundKind uint8

const (
	Lookahead LookaroundKind = iota
	Lookbehind
)

// String returns a human-readable representation of the lookaround kind
func (k LookaroundKind) String() string {
	if k == Lookbehind {
		return "lookbehind"
	}
	return "lookahead"
}

// Lookaround payload layout: index in the low 30 bits, then polarity and kind.
const (
	lookaroundIndexMask  = 1<<30 - 1
	lookaroundPositive   = 1 << 30
	lookaroundBehindFlag = 1 << 31

	// MaxLookarounds bounds the number of lookarounds a program may use.
	MaxLookarounds = lookaroundIndexMask
)

// LookaroundRef is the decoded payload of the lookaround opcodes.
type LookaroundRef struct {
	Index    int
	Kind     LookaroundKind
	Positive bool
}

func (r LookaroundRef) pack() uint32 {
	p := uint32(r.Index) & lookaroundIndexMask
	if r.Positive {
		p |= lookaroundPositive
	}
	if r.Kind == Lookbehind {
		p |= lookaroundBehindFlag
	}
	return p
}

// String returns a human-readable representation of the reference
func (r LookaroundRef) String() string {
	sign := "!"
	if r.Positive {
		sign = "="
	}
	return fmt.Sprintf("%s#%d(%s)", r.Kind, r.Index, sign)
}

// Instruction is a single bytecode instruction.
type Instruction struct {
	Op      Opcode
	Payload uint32
}

// ConsumeRange builds an instruction consuming one unit in [lo, hi].
func ConsumeRange(lo, hi uint16) Instruction {
	return Instruction{Op: OpConsumeRange, Payload: uint32(lo) | uint32(hi)<<16}
}

// ConsumeAny builds an instruction consuming any code unit.
func ConsumeAny() Instruction {
	return ConsumeRange(0, 0xFFFF)
}

// Assertion builds a zero-width assertion.
func Assertion(kind AssertionKind) Instruction {
	return Instruction{Op: OpAssertion, Payload: uint32(kind)}
}

// Fork builds a fork whose lower priority branch jumps to target.
func Fork(target int) Instruction {
	return Instruction{Op: OpFork, Payload: uint32(target)}
}

// Jmp builds an unconditional jump.
func Jmp(target int) Instruction {
	return Instruction{Op: OpJmp, Payload: uint32(target)}
}

// Accept builds an accepting instruction.
func Accept() Instruction {
	return Instruction{Op: OpAccept}
}

// BeginLoop builds a loop entry marker.
func BeginLoop() Instruction {
	return Instruction{Op: OpBeginLoop}
}

// EndLoop builds a loop exit check.
func EndLoop() Instruction {
	return Instruction{Op: OpEndLoop}
}

// SetRegisterToCP stores the current position in register reg.
func SetRegisterToCP(reg int) Instruction {
	return Instruction{Op: OpSetRegisterToCP, Payload: uint32(reg)}
}

// ClearRegister resets register reg.
func ClearRegister(reg int) Instruction {
	return Instruction{Op: OpClearRegister, Payload: uint32(reg)}
}

// SetQuantifierToClock records the clock for quantifier id.
func SetQuantifierToClock(id int) Instruction {
	return Instruction{Op: OpSetQuantifierToClock, Payload: uint32(id)}
}

// StartLookaround introduces a lookaround sub-program.
func StartLookaround(ref LookaroundRef) Instruction {
	return Instruction{Op: OpStartLookaround, Payload: ref.pack()}
}

// EndLookaround terminates a lookaround capture sub-program.
func EndLookaround(ref LookaroundRef) Instruction {
	return Instruction{Op: OpEndLookaround, Payload: ref.pack()}
}

// WriteLookaroundTable records a lookaround hit.
func WriteLookaroundTable(ref LookaroundRef) Instruction {
	return Instruction{Op: OpWriteLookaroundTable, Payload: ref.pack()}
}

// ReadLookaroundTable tests a lookaround result.
func ReadLookaroundTable(ref LookaroundRef) Instruction {
	return Instruction{Op: OpReadLookaroundTable, Payload: ref.pack()}
}

// FilterChild descends to the filter node at pc.
func FilterChild(pc int) Instruction {
	return Instruction{Op: OpFilterChild, Payload: uint32(pc)}
}

// FilterGroup is the filter node of capture group id.
func FilterGroup(id int) Instruction {
	return Instruction{Op: OpFilterGroup, Payload: uint32(id)}
}

// FilterQuantifier is the filter node of quantifier id.
func FilterQuantifier(id int) Instruction {
	return Instruction{Op: OpFilterQuantifier, Payload: uint32(id)}
}

// FilterLookaround is the filter node of lookaround id.
func FilterLookaround(id int) Instruction {
	return Instruction{Op: OpFilterLookaround, Payload: uint32(id)}
}

// Range returns the code unit range of OpConsumeRange.
func (i Instruction) Range() (lo, hi uint16) {
	return uint16(i.Payload), uint16(i.Payload >> 16)
}

// Target returns the pc operand of OpFork, OpJmp and OpFilterChild.
func (i Instruction) Target() int {
	return int(i.Payload)
}

// Index returns the register, quantifier or group operand.
func (i Instruction) Index() int {
	return int(i.Payload)
}

// Assertion returns the payload of OpAssertion.
func (i Instruction) Assertion() AssertionKind {
	return AssertionKind(i.Payload)
}

// Lookaround decodes the payload of the lookaround opcodes.
func (i Instruction) Lookaround() LookaroundRef {
	ref := LookaroundRef{
		Index:    int(i.Payload & lookaroundIndexMask),
		Positive: i.Payload&lookaroundPositive != 0,
	}
	if i.Payload&lookaroundBehindFlag != 0 {
		ref.Kind = Lookbehind
	}
	return ref
}

// String returns a human-readable representation of the instruction
func (i Instruction) String() string {
	switch i.Op {
	case OpConsumeRange:
		lo, hi := i.Range()
		if lo == hi {
			return fmt.Sprintf("%s %s", i.Op, formatUnit(lo))
		}
		return fmt.Sprintf("%s [%s-%s]", i.Op, formatUnit(lo), formatUnit(hi))
	case OpAssertion:
		return fmt.Sprintf("%s %s", i.Op, i.Assertion())
	case OpFork, OpJmp, OpFilterChild:
		return fmt.Sprintf("%s %d", i.Op, i.Target())
	case OpSetRegisterToCP, OpClearRegister, OpSetQuantifierToClock,
		OpFilterGroup, OpFilterQuantifier, OpFilterLookaround:
		return fmt.Sprintf("%s %d", i.Op, i.Index())
	case OpStartLookaround, OpEndLookaround, OpWriteLookaroundTable, OpReadLookaroundTable:
		return fmt.Sprintf("%s %s", i.Op, i.Lookaround())
	default:
		return i.Op.String()
	}
}

func formatUnit(u uint16) string {
	if u >= 0x20 && u < 0x7F {
		return fmt.Sprintf("'%c'", rune(u))
	}
	return fmt.Sprintf("0x%04X", u)
}
