package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"gotest.tools/v3/assert"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/syntax"
)

var cmpUnitRange = cmp.AllowUnexported(unitRange{})

func mustCompile(t *testing.T, pattern string, flags syntax.Flags, enc Encoding) *bytecode.Program {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Encoding = enc
	prog, err := Compile(pattern, flags, cfg)
	assert.NilError(t, err)
	return prog
}

func TestDisassemblyGolden(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   syntax.Flags
	}{
		{"alternation", "a|b", 0},
		{"star_group", "(a)*", 0},
		{"lookbehind", "(?<=a)b", syntax.Sticky},
		{"lookahead_capture", "(?=(a))", syntax.Sticky},
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustCompile(t, tt.pattern, tt.flags, Latin1)
			g.Assert(t, tt.name, []byte(prog.DisassembleString()))
		})
	}
}

func TestProgramMetadata(t *testing.T) {
	prog := mustCompile(t, "(?<x>a)(b)", syntax.Sticky, UTF16)
	assert.Equal(t, prog.RegisterCount, 6)
	assert.DeepEqual(t, prog.CaptureNames, []string{"", "x", ""})
	assert.Equal(t, prog.Flags, bytecode.FlagSticky|bytecode.FlagUTF16)

	prog = mustCompile(t, "a", 0, Latin1)
	assert.Equal(t, prog.Flags, bytecode.ProgramFlag(0))
	assert.Equal(t, len(prog.Filter), 0)
}

func TestAstralLiteral(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		enc     Encoding
		want    []bytecode.Instruction
	}{
		{
			name:    "utf16 pair",
			pattern: "😀",
			enc:     UTF16,
			want: []bytecode.Instruction{
				bytecode.SetRegisterToCP(0),
				bytecode.ConsumeRange(0xD83D, 0xD83D),
				bytecode.ConsumeRange(0xDE00, 0xDE00),
				bytecode.SetRegisterToCP(1),
				bytecode.Accept(),
			},
		},
		{
			name:    "latin1 unrepresentable",
			pattern: "Ā",
			enc:     Latin1,
			want: []bytecode.Instruction{
				bytecode.SetRegisterToCP(0),
				{Op: bytecode.OpConsumeRange, Payload: 1},
				bytecode.SetRegisterToCP(1),
				bytecode.Accept(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustCompile(t, tt.pattern, syntax.Sticky, tt.enc)
			assert.DeepEqual(t, prog.Code, tt.want)
		})
	}
}

func TestLookaheadBodyIsReversed(t *testing.T) {
	prog := mustCompile(t, "(?=ab)", syntax.Sticky, Latin1)
	// main: 4 instructions, then header, 4 prefix-loop instructions, body.
	body := prog.Code[9:]
	assert.DeepEqual(t, body, []bytecode.Instruction{
		bytecode.ConsumeRange('b', 'b'),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.WriteLookaroundTable(bytecode.LookaroundRef{Index: 0, Kind: bytecode.Lookahead, Positive: true}),
	})
}

func TestLookbehindCaptureProgramIsBackward(t *testing.T) {
	prog := mustCompile(t, "(?<=(a)b)", syntax.Sticky, Latin1)
	var capture []bytecode.Instruction
	for _, line := range prog.Listing() {
		if line.Section == bytecode.SectionLookaroundCapture {
			capture = append(capture, line.Inst)
		}
	}
	ref := bytecode.LookaroundRef{Index: 0, Kind: bytecode.Lookbehind, Positive: true}
	assert.DeepEqual(t, capture, []bytecode.Instruction{
		bytecode.StartLookaround(ref),
		bytecode.ClearRegister(2),
		bytecode.ClearRegister(3),
		bytecode.ConsumeRange('b', 'b'),
		bytecode.SetRegisterToCP(3),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.SetRegisterToCP(2),
		bytecode.EndLookaround(ref),
	})
}

func TestLookaroundNumbering(t *testing.T) {
	prog := mustCompile(t, "(?=a(?<=b))(?!c)", syntax.Sticky, Latin1)
	var reads []bytecode.LookaroundRef
	for _, inst := range prog.Code[:5] {
		if inst.Op == bytecode.OpReadLookaroundTable {
			reads = append(reads, inst.Lookaround())
		}
	}
	assert.DeepEqual(t, reads, []bytecode.LookaroundRef{
		{Index: 0, Kind: bytecode.Lookahead, Positive: true},
		{Index: 2, Kind: bytecode.Lookahead, Positive: false},
	})

	headers := 0
	for _, inst := range prog.Code {
		if inst.Op == bytecode.OpStartLookaround {
			headers++
		}
	}
	assert.Equal(t, headers, 3)
}

func TestLazyStar(t *testing.T) {
	prog := mustCompile(t, "a*?", syntax.Sticky, Latin1)
	assert.DeepEqual(t, prog.Code, []bytecode.Instruction{
		bytecode.SetRegisterToCP(0),
		bytecode.Fork(3),
		bytecode.Jmp(7),
		bytecode.BeginLoop(),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.EndLoop(),
		bytecode.Jmp(1),
		bytecode.SetRegisterToCP(1),
		bytecode.Accept(),
	})
}

func TestBoundedRepeat(t *testing.T) {
	prog := mustCompile(t, "a{1,3}", syntax.Sticky, Latin1)
	assert.DeepEqual(t, prog.Code, []bytecode.Instruction{
		bytecode.SetRegisterToCP(0),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.Fork(10),
		bytecode.BeginLoop(),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.EndLoop(),
		bytecode.Fork(10),
		bytecode.BeginLoop(),
		bytecode.ConsumeRange('a', 'a'),
		bytecode.EndLoop(),
		bytecode.SetRegisterToCP(1),
		bytecode.Accept(),
	})
}

func TestFilterLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    []bytecode.Instruction
	}{
		{
			pattern: "((a)|(b))*",
			want: []bytecode.Instruction{
				bytecode.FilterChild(1),
				bytecode.FilterQuantifier(0),
				bytecode.FilterChild(3),
				bytecode.FilterGroup(1),
				bytecode.FilterChild(6),
				bytecode.FilterChild(7),
				bytecode.FilterGroup(2),
				bytecode.FilterGroup(3),
			},
		},
		{
			pattern: "(?!(a))(b)",
			want: []bytecode.Instruction{
				bytecode.FilterChild(1),
				bytecode.FilterGroup(2),
			},
		},
		{
			pattern: "(?:ab)*c",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			prog := mustCompile(t, tt.pattern, 0, Latin1)
			assert.DeepEqual(t, prog.Filter, tt.want)
		})
	}
}

func TestClassSequences(t *testing.T) {
	dot := syntax.MustParse(".", 0).Root
	got := Latin1.classSequences(dot.Ranges, dot.Negate)
	assert.DeepEqual(t, got, [][]unitRange{
		{{0, '\t'}},
		{{'\v', '\f'}},
		{{'\r' + 1, 0xFF}},
	}, cmpUnitRange)

	got = UTF16.classSequences([]rune{'a', 'a', 0x1F600, 0x1F64F}, false)
	assert.DeepEqual(t, got, [][]unitRange{
		{{'a', 'a'}},
		{{0xD83D, 0xD83D}, {0xDE00, 0xDE4F}},
	}, cmpUnitRange)

	assert.Equal(t, len(Latin1.classSequences([]rune{0x100, 0x200}, false)), 0)
}

func TestSurrogateSequences(t *testing.T) {
	got := surrogateSequences(0x10000, 0x10FFFF)
	assert.DeepEqual(t, got, [][]unitRange{
		{{0xD800, 0xD800}, {0xDC00, 0xDFFF}},
		{{0xD801, 0xDBFE}, {0xDC00, 0xDFFF}},
		{{0xDBFF, 0xDBFF}, {0xDC00, 0xDFFF}},
	}, cmpUnitRange)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("(", 0, DefaultConfig())
	var se *syntax.Error
	assert.Assert(t, errors.As(err, &se))
	var ce *CompileError
	assert.Assert(t, errors.As(err, &ce))
	assert.Equal(t, ce.Pattern, "(")

	cfg := DefaultConfig()
	cfg.MaxInstructions = 100
	_, err = Compile("a{200}", 0, cfg)
	assert.Assert(t, errors.Is(err, ErrTooComplex), "error %v", err)

	cfg = DefaultConfig()
	cfg.Encoding = Encoding(7)
	_, err = Compile("a", 0, cfg)
	assert.Assert(t, errors.Is(err, ErrInvalidConfig))
}
