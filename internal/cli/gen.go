package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/coregx/regvm/internal/codegen"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Output string
	codegen.Config
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen <pattern>",
		Short: "Generate a Go file embedding a precompiled pattern",
		Long: `Generate a Go file declaring an exported *regvm.Regex variable loaded
from embedded program containers, so the pattern is not parsed or
compiled at run time.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.Package, "package", "main", "package name of the generated file")
	cmd.Flags().StringVar(&opts.Name, "name", "Pattern", "exported variable name")
	cmd.Flags().BoolVar(&opts.OmitLatin1, "omit-latin1", false, "embed only the UTF-16 program")

	return cmd
}

func runGen(cmd *cobra.Command, opts *GenOptions, pattern string) error {
	re, err := opts.compile(pattern, nil)
	if err != nil {
		return err
	}
	if opts.Output == "" {
		return genError(codegen.Write(cmd.OutOrStdout(), re, opts.Config))
	}
	if err := codegen.WriteFile(opts.Output, re, opts.Config); err != nil {
		return genError(err)
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(map[string]string{"file": opts.Output}, func(w io.Writer) error {
		_, err := io.WriteString(w, "✓ Wrote "+opts.Output+"\n")
		return err
	})
}

func genError(err error) error {
	if err == nil {
		return nil
	}
	return WrapExitError(ExitCommandError, "generating code", err)
}
