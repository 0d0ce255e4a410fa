package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	Latin1 bool
}

// CompileResult describes a written program container.
type CompileResult struct {
	File         string `json:"file"`
	Bytes        int    `json:"bytes"`
	Instructions int    `json:"instructions"`
	Registers    int    `json:"registers"`
	Encoding     string `json:"encoding"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <pattern>",
		Short: "Compile a pattern to a binary program container",
		Long: `Compile a pattern and write its program container, the format read
by bytecode.Program.UnmarshalBinary and regvm.Load.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.Latin1, "latin1", false, "write the one-byte program instead of the UTF-16 program")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runCompile(cmd *cobra.Command, opts *CompileOptions, pattern string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	re, err := opts.compile(pattern, nil)
	if err != nil {
		return formatter.Fail(err)
	}
	prog, encoding := re.Program(), "utf-16"
	if opts.Latin1 {
		prog, encoding = re.Latin1Program(), "latin1"
	}
	data, err := prog.MarshalBinary()
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "encoding program", err))
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "writing file", err))
	}

	result := CompileResult{
		File:         opts.Output,
		Bytes:        len(data),
		Instructions: len(prog.Code) + len(prog.Filter),
		Registers:    prog.RegisterCount,
		Encoding:     encoding,
	}
	return formatter.Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Wrote %s program (%d instructions, %d bytes) to %s\n",
			result.Encoding, result.Instructions, result.Bytes, result.File)
		return err
	})
}
