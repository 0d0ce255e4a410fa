// Package codegen writes Go source files that embed precompiled regular
// expressions, so programs can be loaded at init time without parsing or
// compiling the pattern.
package codegen

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"

	"github.com/coregx/regvm"
)

// ImportPath is the import path of the runtime package referenced by
// generated code.
const ImportPath = "github.com/coregx/regvm"

// ErrInvalidConfig reports an unusable package or variable name.
var ErrInvalidConfig = errors.New("codegen: invalid config")

// Config holds the configuration for code generation.
type Config struct {
	// Package is the package clause of the generated file.
	Package string

	// Name is the exported variable holding the expression.
	Name string

	// OmitLatin1 leaves out the one-byte program; all input is then
	// matched as UTF-16.
	OmitLatin1 bool
}

func (c Config) validate() error {
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("%w: package %q is not an identifier", ErrInvalidConfig, c.Package)
	}
	if !token.IsIdentifier(c.Name) || !token.IsExported(c.Name) {
		return fmt.Errorf("%w: name %q is not an exported identifier", ErrInvalidConfig, c.Name)
	}
	return nil
}

// Generator renders one precompiled expression.
type Generator struct {
	config Config
	file   *jen.File
}

// New creates a generator.
func New(config Config) (*Generator, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	file := jen.NewFile(config.Package)
	file.HeaderComment("Code generated by regvm gen. DO NOT EDIT.")
	file.ImportName(ImportPath, "regvm")
	return &Generator{config: config, file: file}, nil
}

// Generate adds the declarations for re to the file.
func (g *Generator) Generate(re *regvm.Regex) error {
	pre, err := re.Precompile()
	if err != nil {
		return fmt.Errorf("precompile %q: %w", re.String(), err)
	}
	name := g.config.Name
	prefix := lowerFirst(name)

	fields := jen.Dict{
		jen.Id("Pattern"): jen.Lit(pre.Pattern),
		jen.Id("UTF16"):   jen.Index().Byte().Call(jen.Id(prefix + "UTF16")),
	}
	if pre.Flags != "" {
		fields[jen.Id("Flags")] = jen.Lit(pre.Flags)
	}
	if !g.config.OmitLatin1 {
		fields[jen.Id("Latin1")] = jen.Index().Byte().Call(jen.Id(prefix + "Latin1"))
	}

	if pre.Flags != "" {
		g.file.Commentf("%s is the expression %q with flags %q.", name, pre.Pattern, pre.Flags)
	} else {
		g.file.Commentf("%s is the expression %q.", name, pre.Pattern)
	}
	g.file.Var().Id(name).Op("=").Qual(ImportPath, "MustLoad").Call(
		jen.Qual(ImportPath, "Precompiled").Values(fields),
	)
	g.file.Line()

	consts := []jen.Code{jen.Id(prefix + "UTF16").Op("=").Lit(string(pre.UTF16))}
	if !g.config.OmitLatin1 {
		consts = append(consts, jen.Id(prefix+"Latin1").Op("=").Lit(string(pre.Latin1)))
	}
	g.file.Comment("Program containers, see bytecode.Program.MarshalBinary.")
	g.file.Const().Defs(consts...)
	return nil
}

// Render writes the formatted file to w.
func (g *Generator) Render(w io.Writer) error {
	return g.file.Render(w)
}

// Save writes the formatted file to path.
func (g *Generator) Save(path string) error {
	if err := g.file.Save(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// Write renders re as a complete file to w.
func Write(w io.Writer, re *regvm.Regex, config Config) error {
	g, err := New(config)
	if err != nil {
		return err
	}
	if err := g.Generate(re); err != nil {
		return err
	}
	return g.Render(w)
}

// WriteFile renders re as a complete file at path.
func WriteFile(path string, re *regvm.Regex, config Config) error {
	g, err := New(config)
	if err != nil {
		return err
	}
	if err := g.Generate(re); err != nil {
		return err
	}
	return g.Save(path)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
