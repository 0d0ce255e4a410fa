// Package regvm compiles ECMAScript-style regular expressions to bytecode
// and runs them on a linear-time NFA interpreter.
//
// Matching never backtracks: a search costs O(program size x input length)
// whatever the pattern, including patterns with lookarounds. Capture
// groups follow ECMAScript rules, so a group inside a quantifier reports
// only the last iteration that set it and groups inside negative
// lookarounds are never reported.
//
// Basic usage:
//
//	re := regvm.MustCompile(`(\w+)@(\w+)\.com`)
//	m := re.FindStringSubmatch("mail bob@example.com")
//	// m == []string{"bob@example.com", "bob", "example"}
//
// Byte input is interpreted as UTF-8. Offsets are byte offsets; ASCII
// input is matched directly, other input is matched as UTF-16 code units
// like an ECMAScript engine would and offsets are mapped back. Input
// already in UTF-16 can be matched with the UTF16 methods.
package regvm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/compiler"
	"github.com/coregx/regvm/literal"
	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/prefilter"
	"github.com/coregx/regvm/syntax"
)

// Regex is a compiled regular expression. It is safe for concurrent use.
type Regex struct {
	pattern string
	config  Config
	log     *zap.Logger

	// latin1 matches ASCII byte input; utf16 everything else.
	latin1 *nfa.Program
	utf16  *nfa.Program
	code8  *bytecode.Program
	code   *bytecode.Program

	names     []string
	prefilter prefilter.Prefilter
}

// Compile compiles pattern without flags.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithFlags compiles pattern with an ECMAScript flag string such as
// "im".
func CompileWithFlags(pattern, flags string) (*Regex, error) {
	f, err := syntax.ParseFlags(flags)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Flags = f
	return CompileWithConfig(pattern, config)
}

// MustCompile is like Compile but panics if the pattern is invalid.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("regvm: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern with config.
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log := config.Logger
	if log == nil {
		log = nfa.Logger()
	}

	ast, err := syntax.Parse(pattern, config.Flags)
	if err != nil {
		return nil, &compiler.CompileError{Pattern: pattern, Err: err}
	}
	code8, latin1, err := build(ast, compiler.Latin1, config)
	if err != nil {
		return nil, err
	}
	code16, utf16, err := build(ast, compiler.UTF16, config)
	if err != nil {
		return nil, err
	}

	r := &Regex{
		pattern: pattern,
		config:  config,
		log:     log,
		latin1:  latin1,
		utf16:   utf16,
		code8:   code8,
		code:    code16,
		names:   code16.CaptureNames,
	}
	if config.EnablePrefilter && config.Flags&syntax.Sticky == 0 && latin1.LookaroundCount() == 0 {
		prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(ast)
		r.prefilter = prefilter.NewBuilder(prefixes).Build()
	}

	fields := []zap.Field{
		zap.String("pattern", pattern),
		zap.Int("instructions", len(code16.Code)),
		zap.Int("lookarounds", utf16.LookaroundCount()),
	}
	if r.prefilter != nil {
		fields = append(fields, zap.String("prefilter", r.prefilter.String()))
	}
	log.Debug("pattern compiled", fields...)
	return r, nil
}

func build(ast *syntax.Regexp, enc compiler.Encoding, config Config) (*bytecode.Program, *nfa.Program, error) {
	c := compiler.NewCompiler(compiler.Config{Encoding: enc, MaxInstructions: config.MaxInstructions})
	code, err := c.CompileRegexp(ast)
	if err != nil {
		return nil, nil, err
	}
	prog, err := nfa.NewProgram(code)
	if err != nil {
		return nil, nil, fmt.Errorf("regvm: %s program for %q: %w", enc, ast.Pattern, err)
	}
	return code, prog, nil
}

// String returns the source pattern.
func (r *Regex) String() string {
	return r.pattern
}

// Flags returns the pattern flags.
func (r *Regex) Flags() syntax.Flags {
	return r.config.Flags
}

// NumSubexp returns the number of capture groups.
func (r *Regex) NumSubexp() int {
	return len(r.names) - 1
}

// SubexpNames returns the names of the capture groups. Index 0 is the
// whole match and unnamed groups have an empty name.
func (r *Regex) SubexpNames() []string {
	return r.names
}

// SubexpIndex returns the index of the group with the given name, or -1.
func (r *Regex) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Program returns the compiled UTF-16 program. It must not be modified.
func (r *Regex) Program() *bytecode.Program {
	return r.code
}

// Latin1Program returns the compiled one-byte program, or nil for an
// expression loaded without one. It must not be modified.
func (r *Regex) Latin1Program() *bytecode.Program {
	return r.code8
}
