package nfa

import "fmt"

// slab is a growable array of fixed-width records addressed by slot.
type slab[T any] struct {
	width int
	data  []T
}

func (s *slab[T]) at(slot int32) []T {
	off := int(slot) * s.width
	return s.data[off : off+s.width : off+s.width]
}

func (s *slab[T]) grow() {
	var zero T
	for i := 0; i < s.width; i++ {
		s.data = append(s.data, zero)
	}
}

// arena owns the per-thread state of an interpreter: registers, quantifier
// clocks, capture clocks (one per register pair), lookaround clocks and
// lookaround match positions. The five slabs share slot numbers and a
// free list, so a thread is a single slot.
type arena struct {
	regs        slab[int32]
	quantifiers slab[uint64]
	captures    slab[uint64]
	laClocks    slab[uint64]
	laIndices   slab[int32]

	slots int32
	free  []int32
	live  int

	memoryPerThread int
	maxMemory       int
}

func newArena(p *Program, maxMemory int) *arena {
	return &arena{
		regs:            slab[int32]{width: p.registerCount},
		quantifiers:     slab[uint64]{width: p.quantifierCount},
		captures:        slab[uint64]{width: p.registerCount / 2},
		laClocks:        slab[uint64]{width: len(p.lookarounds)},
		laIndices:       slab[int32]{width: len(p.lookarounds)},
		memoryPerThread: p.memoryPerThread,
		maxMemory:       maxMemory,
	}
}

// alloc returns a slot with every register undefined and every clock unset.
func (a *arena) alloc() (int32, error) {
	if a.maxMemory > 0 && (a.live+1)*a.memoryPerThread > a.maxMemory {
		return 0, fmt.Errorf("%w: %d live threads exceed %d bytes", ErrException, a.live+1, a.maxMemory)
	}
	var slot int32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = a.slots
		a.slots++
		a.regs.grow()
		a.quantifiers.grow()
		a.captures.grow()
		a.laClocks.grow()
		a.laIndices.grow()
	}
	a.live++
	a.clear(slot)
	return slot, nil
}

func (a *arena) clear(slot int32) {
	for i, regs := 0, a.regs.at(slot); i < len(regs); i++ {
		regs[i] = UndefinedRegister
	}
	clear(a.quantifiers.at(slot))
	clear(a.captures.at(slot))
	clear(a.laClocks.at(slot))
	for i, idx := 0, a.laIndices.at(slot); i < len(idx); i++ {
		idx[i] = UndefinedRegister
	}
}

// clone allocates a slot holding a copy of src.
func (a *arena) clone(src int32) (int32, error) {
	slot, err := a.alloc()
	if err != nil {
		return 0, err
	}
	copy(a.regs.at(slot), a.regs.at(src))
	copy(a.quantifiers.at(slot), a.quantifiers.at(src))
	copy(a.captures.at(slot), a.captures.at(src))
	copy(a.laClocks.at(slot), a.laClocks.at(src))
	copy(a.laIndices.at(slot), a.laIndices.at(src))
	return slot, nil
}

func (a *arena) release(slot int32) {
	a.free = append(a.free, slot)
	a.live--
}
