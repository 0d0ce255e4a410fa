package nfa

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/internal/conv"
	"github.com/coregx/regvm/internal/sparse"
)

// DefaultMaxMemory is the thread memory budget used when Options.MaxMemory
// is zero.
const DefaultMaxMemory = 64 << 20

// Options configures a search.
type Options struct {
	// StartIndex is the position of the first search.
	StartIndex int

	// Origin selects how interrupts are serviced.
	Origin CallOrigin

	// Interrupter is polled every 64 consumed code units. Nil disables
	// polling.
	Interrupter Interrupter

	// MaxMemory bounds the bytes held by live threads. Zero selects
	// DefaultMaxMemory; a negative value disables the limit.
	MaxMemory int

	// Candidates, if set, is asked for the next position at which a match
	// can start, given a position. A negative result ends the search. It is
	// consulted only for programs without lookarounds, and callers must only
	// install it for unanchored programs.
	Candidates func(at int) int

	// Logger receives debug events. Nil uses the package logger.
	Logger *zap.Logger
}

// Stats reports counters of the last FindMatches call.
type Stats struct {
	// Steps is the number of instructions executed.
	Steps uint64

	// Consumed is the number of code units fed to threads.
	Consumed uint64

	// PeakThreads is the largest number of simultaneously live threads.
	PeakThreads int

	// TableFills and Replays count lookaround sub-program runs.
	TableFills int
	Replays    int
}

type thread struct {
	pc       int
	slot     int32
	consumed bool
}

type runKind uint8

const (
	runMain runKind = iota
	runFill
	runLane
	runCapture
)

// run is one pass of a sub-program over the input. active is a stack with
// the highest-priority thread on top; blocked holds threads waiting on a
// CONSUME_RANGE in priority order.
type run struct {
	kind       runKind
	backward   bool
	lookaround int

	active  []thread
	blocked []thread
	spare   []thread

	best int32
}

// Interpreter runs a program over one input. It is not safe for concurrent
// use; create one per goroutine.
type Interpreter[U Unit] struct {
	prog  *Program
	input []U
	opts  Options
	log   *zap.Logger

	arena   *arena
	clock   uint64
	visited []int
	polled  int
	stats   Stats

	tables      []bitset
	hits        *sparse.Set
	filterStack []filterFrame

	// Lane state outlives a single search. laneNext is the next position
	// the lanes step at; laneLog holds their hits for the positions from
	// laneBase up to laneNext, laneWords words per position.
	lanes     []run
	laneNext  int
	laneBase  int
	laneLog   []uint64
	laneWords int
}

// New creates an interpreter for prog over input.
func New[U Unit](prog *Program, input []U, opts Options) *Interpreter[U] {
	maxMemory := opts.MaxMemory
	switch {
	case maxMemory == 0:
		maxMemory = DefaultMaxMemory
	case maxMemory < 0:
		maxMemory = 0
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Interpreter[U]{
		prog:    prog,
		input:   input,
		opts:    opts,
		log:     log,
		arena:   newArena(prog, maxMemory),
		visited: make([]int, 2*len(prog.code)),
	}
}

// Reset moves the start of the next FindMatches call to start. Lookaround
// tables already built for the input are kept, and so are lanes when start
// is not behind the positions they have already recorded.
func (ip *Interpreter[U]) Reset(start int) {
	ip.opts.StartIndex = start
}

// Stats returns the counters of the last FindMatches call.
func (ip *Interpreter[U]) Stats() Stats {
	return ip.stats
}

// FindMatches finds up to maxMatches successive non-overlapping matches starting at
// Options.StartIndex and writes RegisterCount registers per match to out.
// It returns the number of matches found.
//
// Output is written only when the call succeeds. On ErrRetry the call can
// be repeated with the same arguments; on ErrException it must not be.
func (ip *Interpreter[U]) FindMatches(out []int32, maxMatches int) (int, error) {
	n := ip.prog.registerCount
	if maxMatches < 0 || len(out) < maxMatches*n {
		return 0, fmt.Errorf("%w: %d registers for %d matches of %d", ErrOutputTooSmall, len(out), maxMatches, n)
	}
	ip.clock = 0
	ip.polled = 0
	ip.stats = Stats{}

	count, staged, err := ip.findMatches(maxMatches)
	if err != nil {
		if errors.Is(err, ErrRetry) {
			ip.log.Debug("search interrupted", zap.Int("start", ip.opts.StartIndex))
		} else {
			ip.log.Warn("search aborted", zap.Int("start", ip.opts.StartIndex), zap.Error(err))
		}
		return 0, err
	}
	copy(out, staged)
	return count, nil
}

func (ip *Interpreter[U]) findMatches(maxMatches int) (int, []int32, error) {
	n := ip.prog.registerCount
	pos := ip.opts.StartIndex
	if pos < 0 || pos > len(ip.input) {
		return 0, nil, nil
	}
	if len(ip.prog.lookarounds) > 0 && !ip.prog.UsesLanes() && ip.tables == nil {
		ip.log.Debug("lookarounds use tables", zap.Int("lookarounds", len(ip.prog.lookarounds)))
		if err := ip.buildTables(); err != nil {
			ip.tables = nil
			return 0, nil, err
		}
	}
	if ip.prog.UsesLanes() && ip.hits == nil {
		ip.log.Debug("lookbehinds use lanes",
			zap.Int("lookarounds", len(ip.prog.lookarounds)),
			zap.Int("warmup", ip.prog.warmup))
		ip.hits = sparse.New(len(ip.prog.lookarounds))
		ip.laneWords = (len(ip.prog.lookarounds) + 63) / 64
	}

	var staged []int32
	count := 0
	for count < maxMatches && pos <= len(ip.input) {
		if ip.opts.Candidates != nil && len(ip.prog.lookarounds) == 0 {
			c := ip.opts.Candidates(pos)
			if c < 0 || c > len(ip.input) {
				break
			}
			pos = c
		}
		best, err := ip.search(pos)
		if err != nil {
			return 0, nil, err
		}
		if best < 0 {
			break
		}
		if err := ip.fillLookaroundCaptures(best); err != nil {
			ip.arena.release(best)
			return 0, nil, err
		}
		staged = append(staged, make([]int32, n)...)
		ip.applyFilter(best, staged[len(staged)-n:])
		regs := ip.arena.regs.at(best)
		start, end := int(regs[0]), int(regs[1])
		ip.arena.release(best)
		count++
		if end == start {
			pos = end + 1
		} else {
			pos = end
		}
	}
	return count, staged, nil
}

// search runs the main program from start and returns the slot of the
// winning thread, or -1.
func (ip *Interpreter[U]) search(start int) (int32, error) {
	r := &run{kind: runMain, best: -1}
	if !ip.prog.UsesLanes() {
		if err := ip.runToEnd(r, 0, start); err != nil {
			return -1, err
		}
		return r.best, nil
	}

	if err := ip.syncLanes(start); err != nil {
		ip.dropLanes()
		return -1, err
	}
	if err := ip.runToEndWith(r, 0, start, true); err != nil {
		ip.dropLanes()
		return -1, err
	}
	return r.best, nil
}

func (ip *Interpreter[U]) runToEnd(r *run, pc, pos int) error {
	return ip.runToEndWith(r, pc, pos, false)
}

// runToEndWith seeds one thread at pc and steps the run from pos until no
// thread is waiting for input or the input is exhausted. With lanes set,
// the lanes are brought up to every position before the run steps it. On
// error every thread of r is released; on success only r.best stays live.
func (ip *Interpreter[U]) runToEndWith(r *run, pc, pos int, lanes bool) error {
	ip.resetVisited()
	slot, err := ip.arena.alloc()
	if err != nil {
		return err
	}
	r.active = append(r.active, thread{pc: pc, slot: slot})

	for {
		if lanes {
			err = ip.ensureLanes(pos)
		}
		if err == nil {
			err = ip.runActive(r, pos)
		}
		if err != nil {
			ip.releaseRun(r)
			if r.best >= 0 {
				ip.arena.release(r.best)
				r.best = -1
			}
			return err
		}
		if len(r.blocked) == 0 {
			return nil
		}
		var u U
		if r.backward {
			if pos == 0 {
				break
			}
			pos--
			u = ip.input[pos]
		} else {
			if pos == len(ip.input) {
				break
			}
			u = ip.input[pos]
			pos++
		}
		ip.advance(r, u)
		if err = ip.consumed(); err != nil {
			ip.releaseRun(r)
			if r.best >= 0 {
				ip.arena.release(r.best)
				r.best = -1
			}
			return err
		}
	}
	ip.releaseRun(r)
	return nil
}

func (ip *Interpreter[U]) resetVisited() {
	for i := range ip.visited {
		ip.visited[i] = -1
	}
}

// consumed counts one consumed position and polls for interrupts.
func (ip *Interpreter[U]) consumed() error {
	ip.stats.Consumed++
	ip.polled++
	if ip.polled < pollInterval {
		return nil
	}
	ip.polled = 0
	return checkInterrupt(ip.opts.Interrupter, ip.opts.Origin)
}

// advance feeds u to the blocked threads. Threads whose range contains u
// move to the active stack, pushed in reverse so the highest-priority thread
// ends on top.
func (ip *Interpreter[U]) advance(r *run, u U) {
	c := uint16(u)
	next := r.spare[:0]
	for i := len(r.blocked) - 1; i >= 0; i-- {
		t := r.blocked[i]
		lo, hi := ip.prog.code[t.pc].Range()
		if c < lo || c > hi {
			ip.arena.release(t.slot)
			continue
		}
		t.pc++
		t.consumed = true
		next = append(next, t)
	}
	r.spare = r.blocked[:0]
	r.blocked = r.active[:0]
	r.active = next
}

// releaseRun releases every pending thread of r except r.best.
func (ip *Interpreter[U]) releaseRun(r *run) {
	for _, t := range r.active {
		ip.arena.release(t.slot)
	}
	for _, t := range r.blocked {
		ip.arena.release(t.slot)
	}
	r.active = r.active[:0]
	r.blocked = r.blocked[:0]
}

// runActive runs the active threads at pos until each has blocked, died or
// accepted.
func (ip *Interpreter[U]) runActive(r *run, pos int) error {
	for len(r.active) > 0 {
		t := r.active[len(r.active)-1]
		r.active = r.active[:len(r.active)-1]
		if err := ip.step(r, t, pos); err != nil {
			return err
		}
	}
	return nil
}

// step executes t at pos. FORK continues the current thread at pc+1 and
// pushes the forked, lower-priority thread above everything already on the
// stack.
func (ip *Interpreter[U]) step(r *run, t thread, pos int) error {
	code := ip.prog.code
	a := ip.arena
	for {
		key := 2 * t.pc
		if t.consumed {
			key++
		}
		if ip.visited[key] == pos {
			a.release(t.slot)
			return nil
		}
		ip.visited[key] = pos
		ip.clock++
		ip.stats.Steps++

		inst := code[t.pc]
		switch inst.Op {
		case bytecode.OpConsumeRange:
			r.blocked = append(r.blocked, t)
			ip.notePeak()
			return nil

		case bytecode.OpAssertion:
			if !ip.assert(inst.Assertion(), pos) {
				a.release(t.slot)
				return nil
			}
			t.pc++

		case bytecode.OpFork:
			slot, err := a.clone(t.slot)
			if err != nil {
				a.release(t.slot)
				return err
			}
			r.active = append(r.active, thread{pc: inst.Target(), slot: slot, consumed: t.consumed})
			ip.notePeak()
			t.pc++

		case bytecode.OpJmp:
			t.pc = inst.Target()

		case bytecode.OpAccept:
			if r.kind != runMain {
				a.release(t.slot)
				return nil
			}
			ip.accept(r, t)
			return nil

		case bytecode.OpEndLookaround:
			if r.kind != runCapture {
				a.release(t.slot)
				return nil
			}
			ip.accept(r, t)
			return nil

		case bytecode.OpBeginLoop:
			t.consumed = false
			t.pc++

		case bytecode.OpEndLoop:
			if !t.consumed {
				a.release(t.slot)
				return nil
			}
			t.pc++

		case bytecode.OpSetRegisterToCP:
			reg := inst.Index()
			a.regs.at(t.slot)[reg] = conv.IntToInt32(pos)
			a.captures.at(t.slot)[reg/2] = ip.clock
			t.pc++

		case bytecode.OpClearRegister:
			a.regs.at(t.slot)[inst.Index()] = UndefinedRegister
			t.pc++

		case bytecode.OpSetQuantifierToClock:
			a.quantifiers.at(t.slot)[inst.Index()] = ip.clock
			t.pc++

		case bytecode.OpWriteLookaroundTable:
			idx := inst.Lookaround().Index
			switch r.kind {
			case runFill:
				ip.tables[idx].set(pos)
			case runLane:
				ip.hits.Insert(conv.IntToUint32(idx))
			}
			a.release(t.slot)
			return nil

		case bytecode.OpReadLookaroundTable:
			ref := inst.Lookaround()
			if ip.lookaroundResult(ref.Index, pos) != ref.Positive {
				a.release(t.slot)
				return nil
			}
			if ref.Positive && ip.prog.lookarounds[ref.Index].capturePC >= 0 {
				a.laClocks.at(t.slot)[ref.Index] = ip.clock
				a.laIndices.at(t.slot)[ref.Index] = conv.IntToInt32(pos)
			}
			t.pc++

		default:
			a.release(t.slot)
			return nil
		}
	}
}

// accept makes t the best thread of r and kills the lower-priority threads
// still on the active stack. Blocked threads outrank t and keep running.
func (ip *Interpreter[U]) accept(r *run, t thread) {
	if r.best >= 0 {
		ip.arena.release(r.best)
	}
	r.best = t.slot
	for _, lower := range r.active {
		ip.arena.release(lower.slot)
	}
	r.active = r.active[:0]
}

func (ip *Interpreter[U]) notePeak() {
	if ip.arena.live > ip.stats.PeakThreads {
		ip.stats.PeakThreads = ip.arena.live
	}
}

func (ip *Interpreter[U]) assert(kind bytecode.AssertionKind, pos int) bool {
	in := ip.input
	switch kind {
	case bytecode.AssertStartOfInput:
		return pos == 0
	case bytecode.AssertEndOfInput:
		return pos == len(in)
	case bytecode.AssertStartOfLine:
		return pos == 0 || isLineTerminator(in[pos-1])
	case bytecode.AssertEndOfLine:
		return pos == len(in) || isLineTerminator(in[pos])
	case bytecode.AssertWordBoundary:
		return ip.isWordAt(pos-1) != ip.isWordAt(pos)
	case bytecode.AssertNonWordBoundary:
		return ip.isWordAt(pos-1) == ip.isWordAt(pos)
	}
	return false
}

func (ip *Interpreter[U]) isWordAt(pos int) bool {
	return pos >= 0 && pos < len(ip.input) && isWordUnit(ip.input[pos])
}
