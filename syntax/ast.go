// Package syntax parses ECMAScript-flavoured regular expressions into an
// abstract syntax tree consumed by the compiler.
//
// The supported language is the non-unicode-mode ECMAScript grammar without
// backreferences: alternation, quantifiers (greedy and lazy), character
// classes, capturing/non-capturing/named groups, the ^ $ \b \B assertions and
// all four lookaround forms.
package syntax

import (
	"fmt"
	"strings"
)

// Op identifies the kind of an AST node.
type Op uint8

const (
	// OpEmpty matches the empty string.
	OpEmpty Op = iota

	// OpLiteral matches a single character (Rune).
	OpLiteral

	// OpClass matches one character from Ranges (negated when Negate is set).
	OpClass

	// OpAssert is a zero-width assertion (Assert).
	OpAssert

	// OpGroup is a capturing group (Cap, Name, Subs[0]).
	OpGroup

	// OpConcat matches Subs in sequence.
	OpConcat

	// OpAlternate matches one of Subs, earlier alternatives preferred.
	OpAlternate

	// OpRepeat repeats Subs[0] between Min and Max times (Max < 0 = unbounded).
	OpRepeat

	// OpLookaround is a zero-width lookahead or lookbehind (Behind, Negate, Subs[0]).
	OpLookaround
)

// String returns a human-readable representation of the Op
func (op Op) String() string {
	switch op {
	case OpEmpty:
		return "Empty"
	case OpLiteral:
		return "Literal"
	case OpClass:
		return "Class"
	case OpAssert:
		return "Assert"
	case OpGroup:
		return "Group"
	case OpConcat:
		return "Concat"
	case OpAlternate:
		return "Alternate"
	case OpRepeat:
		return "Repeat"
	case OpLookaround:
		return "Lookaround"
	default:
		return fmt.Sprintf("Unknown(%d)", op)
	}
}

// AssertKind is the kind of an OpAssert node.
type AssertKind uint8

const (
	AssertBegin AssertKind = iota // ^ without multiline
	AssertEnd                     // $ without multiline
	AssertBeginLine               // ^ in multiline mode
	AssertEndLine                 // $ in multiline mode
	AssertWordBoundary            // \b
	AssertNotWordBoundary         // \B
)

// Node is an AST node. Which fields are meaningful depends on Op.
type Node struct {
	Op     Op
	Rune   rune
	Ranges []rune // sorted, non-overlapping [lo, hi] pairs
	Negate bool
	Assert AssertKind
	Cap    int
	Name   string
	Min    int
	Max    int
	Greedy bool
	Behind bool
	Subs   []*Node
}

// Regexp is a parsed pattern.
type Regexp struct {
	Root    *Node
	Flags   Flags
	Pattern string

	// Names has one entry per group including group 0; unnamed groups are "".
	Names []string
}

// NumCaptures returns the number of capturing groups, excluding group 0.
func (re *Regexp) NumCaptures() int {
	return len(re.Names) - 1
}

// String renders the node in a compact debug form
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Op {
	case OpEmpty:
		sb.WriteString("empty")
	case OpLiteral:
		fmt.Fprintf(sb, "lit{%q}", n.Rune)
	case OpClass:
		sb.WriteString("class{")
		if n.Negate {
			sb.WriteByte('^')
		}
		for i := 0; i < len(n.Ranges); i += 2 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if n.Ranges[i] == n.Ranges[i+1] {
				fmt.Fprintf(sb, "%q", n.Ranges[i])
			} else {
				fmt.Fprintf(sb, "%q-%q", n.Ranges[i], n.Ranges[i+1])
			}
		}
		sb.WriteByte('}')
	case OpAssert:
		fmt.Fprintf(sb, "assert{%d}", n.Assert)
	case OpGroup:
		fmt.Fprintf(sb, "cap%d{", n.Cap)
		n.Subs[0].write(sb)
		sb.WriteByte('}')
	case OpConcat, OpAlternate:
		if n.Op == OpConcat {
			sb.WriteString("cat{")
		} else {
			sb.WriteString("alt{")
		}
		for i, sub := range n.Subs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sub.write(sb)
		}
		sb.WriteByte('}')
	case OpRepeat:
		lazy := ""
		if !n.Greedy {
			lazy = "?"
		}
		fmt.Fprintf(sb, "rep{%d,%d%s ", n.Min, n.Max, lazy)
		n.Subs[0].write(sb)
		sb.WriteByte('}')
	case OpLookaround:
		dir, sign := "ahead", "="
		if n.Behind {
			dir = "behind"
		}
		if n.Negate {
			sign = "!"
		}
		fmt.Fprintf(sb, "look%s%s{", dir, sign)
		n.Subs[0].write(sb)
		sb.WriteByte('}')
	}
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Subs) - 1; i >= 0; i-- {
			stack = append(stack, cur.Subs[i])
		}
	}
}

// HasCaptures reports whether n contains a capturing group.
func HasCaptures(n *Node) bool {
	found := false
	Walk(n, func(c *Node) bool {
		if c.Op == OpGroup {
			found = true
		}
		return !found
	})
	return found
}
