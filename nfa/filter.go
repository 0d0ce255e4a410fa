package nfa

import "github.com/coregx/regvm/bytecode"

type filterFrame struct {
	pc        int
	highWater uint64
}

// applyFilter writes the reported registers of the winning thread to out.
//
// The filter program is a tree of blocks. The root block starts at pc 0;
// every other block is a header (FILTER_GROUP, FILTER_QUANTIFIER or
// FILTER_LOOKAROUND) followed by FILTER_CHILD entries, ending at the next
// header. A node is admitted when its clock is defined and not older than
// the high-water clock of its ancestors; quantifiers and lookarounds raise
// the high-water mark for their subtree. Rejected nodes are skipped with
// their whole subtree, leaving those registers undefined.
func (ip *Interpreter[U]) applyFilter(slot int32, out []int32) {
	a := ip.arena
	regs := a.regs.at(slot)
	for i := range out {
		out[i] = UndefinedRegister
	}
	out[0], out[1] = regs[0], regs[1]

	filter := ip.prog.filter
	stack := ip.filterStack[:0]
	stack = append(stack, filterFrame{pc: 0, highWater: UndefinedClock})
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pc >= len(filter) || filter[top.pc].Op != bytecode.OpFilterChild {
			stack = stack[:len(stack)-1]
			continue
		}
		header := filter[top.pc].Target()
		hw := top.highWater
		top.pc++

		inst := filter[header]
		var clock uint64
		switch inst.Op {
		case bytecode.OpFilterGroup:
			clock = a.captures.at(slot)[inst.Index()]
		case bytecode.OpFilterQuantifier:
			clock = a.quantifiers.at(slot)[inst.Index()]
		case bytecode.OpFilterLookaround:
			clock = a.laClocks.at(slot)[inst.Index()]
		}
		if clock == UndefinedClock || clock < hw {
			continue
		}
		if inst.Op == bytecode.OpFilterGroup {
			g := inst.Index()
			out[2*g], out[2*g+1] = regs[2*g], regs[2*g+1]
		} else {
			hw = clock
		}
		stack = append(stack, filterFrame{pc: header + 1, highWater: hw})
	}
	ip.filterStack = stack
}
