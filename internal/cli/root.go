// Package cli implements the regvm command line tool.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coregx/regvm"
	"github.com/coregx/regvm/syntax"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Flags   string // pattern flags, e.g. "im"

	logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the regvm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "regvm",
		Short: "Linear-time ECMAScript regular expressions",
		Long: `regvm compiles ECMAScript regular expressions, lookarounds included,
to bytecode and runs them on a backtracking-free NFA interpreter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.logger = newLogger(cmd, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log compiler and interpreter events to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Flags, "flags", "f", "", "pattern flags (any of imsy)")

	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewDisasmCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))

	return cmd
}

// newLogger returns a development logger writing to the command's stderr,
// or a no-op logger.
func newLogger(cmd *cobra.Command, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(cmd.ErrOrStderr()),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

// config returns the compile configuration selected by the global flags.
func (o *RootOptions) config() (regvm.Config, error) {
	config := regvm.DefaultConfig()
	flags, err := syntax.ParseFlags(o.Flags)
	if err != nil {
		return config, WrapExitError(ExitCommandError, "invalid flags", err)
	}
	config.Flags = flags
	config.Logger = o.logger
	return config, nil
}

// compile compiles pattern with the global flags.
func (o *RootOptions) compile(pattern string, tweak func(*regvm.Config)) (*regvm.Regex, error) {
	config, err := o.config()
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&config)
	}
	re, err := regvm.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "compile failed", err)
	}
	return re, nil
}
