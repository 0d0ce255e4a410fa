package nfa

import (
	"math/bits"

	"go.uber.org/zap"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/internal/conv"
)

// bitset records, per input position, whether a lookaround body matches.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) get(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// buildTables fills one table per lookaround. Nested lookarounds have
// higher indices than their containers, so tables are filled in
// descending index order and every READ inside a match sub-program sees
// a complete table.
func (ip *Interpreter[U]) buildTables() error {
	n := len(ip.prog.lookarounds)
	ip.tables = make([]bitset, n)
	for idx := n - 1; idx >= 0; idx-- {
		ip.tables[idx] = newBitset(len(ip.input) + 1)
		if err := ip.fillTable(idx); err != nil {
			return err
		}
		ip.stats.TableFills++
		ip.log.Debug("lookaround table filled",
			zap.Int("index", idx),
			zap.Int("hits", ip.tables[idx].count()))
	}
	return nil
}

// fillTable runs the match sub-program of lookaround idx over the whole
// input against the lookaround's direction. The sub-program never stops
// early: every WRITE_LOOKAROUND_TABLE marks a position.
func (ip *Interpreter[U]) fillTable(idx int) error {
	la := ip.prog.lookarounds[idx]
	r := &run{kind: runFill, best: -1}
	if la.kind == bytecode.Lookahead {
		r.backward = true
		return ip.runToEnd(r, la.matchPC, len(ip.input))
	}
	return ip.runToEnd(r, la.matchPC, 0)
}

// newLanes seeds one lane per lookbehind for the lane-based path.
func (ip *Interpreter[U]) newLanes() ([]run, error) {
	lanes := make([]run, len(ip.prog.lookarounds))
	for i := range lanes {
		lanes[i] = run{kind: runLane, lookaround: i, best: -1}
		slot, err := ip.arena.alloc()
		if err != nil {
			ip.releaseLanes(lanes)
			return nil, err
		}
		lanes[i].active = append(lanes[i].active, thread{pc: ip.prog.lookarounds[i].matchPC, slot: slot})
	}
	return lanes, nil
}

// syncLanes prepares the lanes for a search from start. Lane state does
// not depend on where a search starts, so lanes that have not passed start
// are reused and only the recorded hits before start are dropped. Lanes
// that are already past start without hits recorded for it are replaced
// and warmed up again.
func (ip *Interpreter[U]) syncLanes(start int) error {
	if ip.lanes == nil || start < ip.laneBase {
		ip.dropLanes()
		lanes, err := ip.newLanes()
		if err != nil {
			return err
		}
		ip.lanes = lanes
		ip.laneNext = ip.warmupStart(start)
		ip.laneBase = start
		ip.resetVisited()
		return nil
	}
	if start >= ip.laneNext {
		ip.laneLog = ip.laneLog[:0]
	} else {
		n := copy(ip.laneLog, ip.laneLog[(start-ip.laneBase)*ip.laneWords:])
		ip.laneLog = ip.laneLog[:n]
	}
	ip.laneBase = start
	return nil
}

// ensureLanes steps the lanes until their hits at pos are recorded.
func (ip *Interpreter[U]) ensureLanes(pos int) error {
	for ip.laneNext <= pos {
		p := ip.laneNext
		if err := ip.stepLanes(p); err != nil {
			return err
		}
		ip.recordHits(p)
		ip.laneNext++
		if p == len(ip.input) {
			break
		}
		ip.advanceLanes(ip.input[p])
		if err := ip.consumed(); err != nil {
			return err
		}
	}
	return nil
}

// stepLanes runs every lane at pos, highest index first so nested
// lookbehinds have written their hits before their containers read them.
func (ip *Interpreter[U]) stepLanes(pos int) error {
	ip.hits.Clear()
	for i := len(ip.lanes) - 1; i >= 0; i-- {
		if err := ip.runActive(&ip.lanes[i], pos); err != nil {
			return err
		}
	}
	return nil
}

// recordHits appends the hits of the step at pos to the lane log. Warmup
// positions before laneBase are not recorded.
func (ip *Interpreter[U]) recordHits(pos int) {
	if pos < ip.laneBase {
		return
	}
	at := len(ip.laneLog)
	for range ip.laneWords {
		ip.laneLog = append(ip.laneLog, 0)
	}
	row := bitset(ip.laneLog[at:])
	for _, idx := range ip.hits.Values() {
		row.set(int(idx))
	}
}

func (ip *Interpreter[U]) advanceLanes(u U) {
	for i := range ip.lanes {
		ip.advance(&ip.lanes[i], u)
	}
}

func (ip *Interpreter[U]) releaseLanes(lanes []run) {
	for i := range lanes {
		ip.releaseRun(&lanes[i])
	}
}

// dropLanes releases the lanes and their recorded hits.
func (ip *Interpreter[U]) dropLanes() {
	ip.releaseLanes(ip.lanes)
	ip.lanes = nil
	ip.laneLog = ip.laneLog[:0]
}

// warmupStart returns where lanes start for a search beginning at start.
func (ip *Interpreter[U]) warmupStart(start int) int {
	if ip.prog.warmup < 0 {
		return 0
	}
	return max(0, start-ip.prog.warmup)
}

// lookaroundResult reads the recorded result of lookaround idx at pos. A
// lane reading a nested lookbehind at the position being stepped sees the
// hits of the current step.
func (ip *Interpreter[U]) lookaroundResult(idx, pos int) bool {
	if ip.tables != nil {
		return ip.tables[idx].get(pos)
	}
	if pos >= ip.laneNext {
		return ip.hits.Contains(conv.IntToUint32(idx))
	}
	row := (pos - ip.laneBase) * ip.laneWords
	return bitset(ip.laneLog[row : row+ip.laneWords]).get(idx)
}

// fillLookaroundCaptures replays the capture sub-program of every positive
// lookaround the winning thread passed through, in ascending index order,
// and merges the registers and clocks it wrote. Containers replay before
// the lookarounds nested in them, which start from the positions the
// container's replay recorded.
func (ip *Interpreter[U]) fillLookaroundCaptures(best int32) error {
	for idx := range ip.prog.lookarounds {
		la := &ip.prog.lookarounds[idx]
		if la.capturePC < 0 || ip.arena.laClocks.at(best)[idx] == UndefinedClock {
			continue
		}
		at := int(ip.arena.laIndices.at(best)[idx])
		r := &run{kind: runCapture, best: -1, backward: la.kind == bytecode.Lookbehind}
		if err := ip.runToEnd(r, la.capturePC, at); err != nil {
			return err
		}
		ip.stats.Replays++
		if r.best < 0 {
			continue
		}
		ip.merge(best, r.best, la)
		ip.arena.release(r.best)
	}
	return nil
}

func (ip *Interpreter[U]) merge(dst, src int32, la *lookaround) {
	a := ip.arena
	for _, reg := range la.regs {
		a.regs.at(dst)[reg] = a.regs.at(src)[reg]
		a.captures.at(dst)[reg/2] = a.captures.at(src)[reg/2]
	}
	for _, q := range la.quantifiers {
		a.quantifiers.at(dst)[q] = a.quantifiers.at(src)[q]
	}
	for _, id := range la.nested {
		a.laClocks.at(dst)[id] = a.laClocks.at(src)[id]
		a.laIndices.at(dst)[id] = a.laIndices.at(src)[id]
	}
}
