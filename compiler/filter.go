package compiler

import (
	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/syntax"
)

// filterNode is a group, capturing quantifier or capturing lookaround
// together with the constructs nested directly inside it.
type filterNode struct {
	inst     bytecode.Instruction
	children []*filterNode
}

// filterNodes returns the filter nodes for n: n itself when it is a
// filtered construct, otherwise the nodes of its descendants.
func (c *Compiler) filterNodes(n *syntax.Node) []*filterNode {
	var children []*filterNode
	for _, sub := range n.Subs {
		children = append(children, c.filterNodes(sub)...)
	}

	switch n.Op {
	case syntax.OpGroup:
		return []*filterNode{{inst: bytecode.FilterGroup(n.Cap), children: children}}
	case syntax.OpRepeat:
		if q, ok := c.quantIndex[n]; ok {
			return []*filterNode{{inst: bytecode.FilterQuantifier(q), children: children}}
		}
	case syntax.OpLookaround:
		if n.Negate || !c.hasCapture[n] {
			// Groups inside negative lookarounds are never reported.
			return nil
		}
		return []*filterNode{{inst: bytecode.FilterLookaround(c.lookIndex[n]), children: children}}
	}
	return children
}

// filterProgram lays the filter tree out breadth first: the root block of
// FILTER_CHILD entries at pc 0, then one block per node made of its header
// followed by the FILTER_CHILD entries of its children.
func (c *Compiler) filterProgram(root *syntax.Node) []bytecode.Instruction {
	roots := c.filterNodes(root)
	if len(roots) == 0 {
		return nil
	}

	header := make(map[*filterNode]int)
	order := make([]*filterNode, 0, len(roots))
	queue := append([]*filterNode(nil), roots...)
	next := len(roots)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		header[n] = next
		next += 1 + len(n.children)
		order = append(order, n)
		queue = append(queue, n.children...)
	}

	out := make([]bytecode.Instruction, 0, next)
	for _, n := range roots {
		out = append(out, bytecode.FilterChild(header[n]))
	}
	for _, n := range order {
		out = append(out, n.inst)
		for _, child := range n.children {
			out = append(out, bytecode.FilterChild(header[child]))
		}
	}
	return out
}
