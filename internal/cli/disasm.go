package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/coregx/regvm/bytecode"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pcStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Width(6)

	argStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	consumeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	controlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	registerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	lookaroundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	filterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// DisasmOptions holds flags for the disasm command.
type DisasmOptions struct {
	*RootOptions
	Plain  bool
	Styled bool
	Latin1 bool
}

// DisasmLine is the JSON form of one listing line.
type DisasmLine struct {
	Section string `json:"section"`
	PC      int    `json:"pc"`
	Op      string `json:"op"`
	Text    string `json:"text"`
}

// NewDisasmCommand creates the disasm command.
func NewDisasmCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DisasmOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "disasm <pattern>",
		Short: "Print the compiled bytecode of a pattern",
		Long: `Print the compiled bytecode of a pattern: the main program, the match
and capture sub-programs of every lookaround, and the filter program.

Output is styled when stdout is a terminal unless --plain is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "never style the listing")
	cmd.Flags().BoolVar(&opts.Styled, "styled", false, "style the listing even when not writing to a terminal")
	cmd.Flags().BoolVar(&opts.Latin1, "latin1", false, "show the one-byte program instead of the UTF-16 program")
	cmd.MarkFlagsMutuallyExclusive("plain", "styled")

	return cmd
}

func runDisasm(cmd *cobra.Command, opts *DisasmOptions, pattern string) error {
	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{Format: opts.Format, Writer: out}

	re, err := opts.compile(pattern, nil)
	if err != nil {
		return formatter.Fail(err)
	}
	prog := re.Program()
	if opts.Latin1 {
		prog = re.Latin1Program()
	}

	listing := prog.Listing()
	lines := make([]DisasmLine, len(listing))
	for i, l := range listing {
		lines[i] = DisasmLine{Section: l.Section, PC: l.PC, Op: l.Inst.Op.String(), Text: l.Inst.String()}
	}

	styled := opts.Styled || (!opts.Plain && isTerminal(out))
	return formatter.Success(lines, func(w io.Writer) error {
		if !styled {
			return prog.Disassemble(w)
		}
		_, err := io.WriteString(w, renderListing(listing))
		return err
	})
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderListing renders a listing with lipgloss styles.
func renderListing(listing []bytecode.Line) string {
	var sb strings.Builder
	for _, l := range listing {
		if l.Header != "" {
			sb.WriteString(headerStyle.Render(l.Header))
			sb.WriteByte('\n')
		}
		op, args, _ := strings.Cut(l.Inst.String(), " ")
		sb.WriteString(pcStyle.Render(fmt.Sprintf("%04d", l.PC)))
		sb.WriteString(opStyle(l.Inst.Op).Render(op))
		if args != "" {
			sb.WriteByte(' ')
			sb.WriteString(argStyle.Render(args))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func opStyle(op bytecode.Opcode) lipgloss.Style {
	switch op {
	case bytecode.OpConsumeRange, bytecode.OpAssertion:
		return consumeStyle
	case bytecode.OpSetRegisterToCP, bytecode.OpClearRegister, bytecode.OpSetQuantifierToClock:
		return registerStyle
	case bytecode.OpStartLookaround, bytecode.OpEndLookaround,
		bytecode.OpWriteLookaroundTable, bytecode.OpReadLookaroundTable:
		return lookaroundStyle
	}
	if op.IsFilter() {
		return filterStyle
	}
	return controlStyle
}
