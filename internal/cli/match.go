package cli

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf16"

	"github.com/spf13/cobra"

	"github.com/coregx/regvm"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Input       InputOptions
	All         bool
	UTF16       bool
	NoPrefilter bool
	MaxMemory   int
	Timeout     time.Duration
}

// Group is one capture group of a match. Start and End are -1 when the
// group did not participate.
type Group struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// MatchResult is one match with its groups.
type MatchResult struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Text   string  `json:"text"`
	Groups []Group `json:"groups,omitempty"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <pattern> [input]",
		Short: "Search input for a pattern",
		Long: `Search input for a pattern and print the matches with their groups.

The input is the second argument, the file given with --file, or stdin.
Offsets are byte offsets into the UTF-8 input, or code unit offsets with
--utf16. The exit code is 1 when nothing matched.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "report all matches instead of the first")
	cmd.Flags().BoolVar(&opts.UTF16, "utf16", false, "match UTF-16 code units and report unit offsets")
	cmd.Flags().BoolVar(&opts.NoPrefilter, "no-prefilter", false, "disable the literal prefilter")
	cmd.Flags().IntVar(&opts.MaxMemory, "max-memory", 0, "thread memory limit in bytes (0 = default, <0 = unlimited)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "abort the search after this long")
	cmd.Flags().StringVar(&opts.Input.File, "file", "", "read input from file")
	cmd.Flags().StringVar(&opts.Input.Encoding, "encoding", "utf-8", "input encoding (utf-8|utf-16le|utf-16be)")
	cmd.Flags().BoolVar(&opts.Input.NFC, "nfc", false, "normalize input to NFC before matching")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *MatchOptions, args []string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	re, err := opts.compile(args[0], func(c *regvm.Config) {
		c.EnablePrefilter = !opts.NoPrefilter
		c.MaxMemory = opts.MaxMemory
	})
	if err != nil {
		return formatter.Fail(err)
	}
	text, err := opts.Input.read(args[1:], cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	n := 1
	if opts.All {
		n = -1
	}

	var results []MatchResult
	if opts.UTF16 {
		u := units(text)
		idx, err := re.FindAllUTF16SubmatchIndexContext(ctx, u, n)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "search failed", err))
		}
		results = collect(re, idx, func(start, end int) string {
			return string(utf16.Decode(u[start:end]))
		})
	} else {
		idx, err := re.FindAllSubmatchIndexContext(ctx, text, n)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "search failed", err))
		}
		results = collect(re, idx, func(start, end int) string {
			return string(text[start:end])
		})
	}

	if err := formatter.Success(results, func(w io.Writer) error {
		return writeMatches(w, results)
	}); err != nil {
		return err
	}
	if len(results) == 0 {
		return NewExitError(ExitFailure, "no match")
	}
	return nil
}

func collect(re *regvm.Regex, matches [][]int, slice func(start, end int) string) []MatchResult {
	names := re.SubexpNames()
	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		r := MatchResult{Start: m[0], End: m[1], Text: slice(m[0], m[1])}
		for g := 1; 2*g < len(m); g++ {
			group := Group{Index: g, Name: names[g], Start: m[2*g], End: m[2*g+1]}
			if group.Start >= 0 {
				group.Text = slice(group.Start, group.End)
			}
			r.Groups = append(r.Groups, group)
		}
		results = append(results, r)
	}
	return results
}

func writeMatches(w io.Writer, results []MatchResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "[%d,%d) %q\n", r.Start, r.End, r.Text); err != nil {
			return err
		}
		for _, g := range r.Groups {
			label := fmt.Sprint(g.Index)
			if g.Name != "" {
				label += " " + g.Name
			}
			var err error
			if g.Start < 0 {
				_, err = fmt.Fprintf(w, "  %s unset\n", label)
			} else {
				_, err = fmt.Fprintf(w, "  %s [%d,%d) %q\n", label, g.Start, g.End, g.Text)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
