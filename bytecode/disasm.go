package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Section names used in disassembly listings.
const (
	SectionMain              = "main"
	SectionLookaroundMatch   = "match"
	SectionLookaroundCapture = "capture"
	SectionFilter            = "filter"
)

// Line is one row of a disassembly listing.
type Line struct {
	Section string
	PC      int
	Inst    Instruction

	// Header is set on the first line of a section and holds its title.
	Header string
}

// Listing returns the program as annotated lines. Lookaround sub-programs
// are split at their StartLookaround headers: the first header of an index
// opens its match sub-program, the second its capture sub-program.
func (p *Program) Listing() []Line {
	lines := make([]Line, 0, len(p.Code)+len(p.Filter)+2)
	seen := make(map[int]bool)
	section := SectionMain
	header := "main"
	for pc, inst := range p.Code {
		if inst.Op == OpStartLookaround {
			ref := inst.Lookaround()
			section = SectionLookaroundMatch
			if seen[ref.Index] {
				section = SectionLookaroundCapture
			}
			seen[ref.Index] = true
			header = fmt.Sprintf("%s #%d %s", ref.Kind, ref.Index, section)
		}
		lines = append(lines, Line{Section: section, PC: pc, Inst: inst, Header: header})
		header = ""
	}
	header = "filter"
	for pc, inst := range p.Filter {
		lines = append(lines, Line{Section: SectionFilter, PC: pc, Inst: inst, Header: header})
		header = ""
	}
	return lines
}

// Disassemble writes a plain-text listing of the program to w.
func (p *Program) Disassemble(w io.Writer) error {
	for _, line := range p.Listing() {
		if line.Header != "" {
			if _, err := fmt.Fprintf(w, "; %s\n", line.Header); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%04d  %s\n", line.PC, line.Inst); err != nil {
			return err
		}
	}
	return nil
}

// DisassembleString returns the listing written by Disassemble.
func (p *Program) DisassembleString() string {
	var sb strings.Builder
	_ = p.Disassemble(&sb)
	return sb.String()
}
