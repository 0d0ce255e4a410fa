package regvm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coregx/regvm/bytecode"
	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/syntax"
)

// ErrProgramMismatch is returned by Load when a program container was
// compiled for the wrong encoding.
var ErrProgramMismatch = errors.New("regvm: program encoding mismatch")

// Precompiled is a pattern compiled ahead of time. Latin1 and UTF16 hold
// program containers as written by bytecode.Program.MarshalBinary. Latin1
// may be empty, in which case all byte input is matched as UTF-16.
type Precompiled struct {
	Pattern string
	Flags   string
	Latin1  []byte
	UTF16   []byte
}

// Precompile returns the compiled programs of r in container form.
func (r *Regex) Precompile() (Precompiled, error) {
	latin1, err := r.code8.MarshalBinary()
	if err != nil {
		return Precompiled{}, err
	}
	utf16, err := r.code.MarshalBinary()
	if err != nil {
		return Precompiled{}, err
	}
	return Precompiled{
		Pattern: r.pattern,
		Flags:   r.config.Flags.String(),
		Latin1:  latin1,
		UTF16:   utf16,
	}, nil
}

// Load builds a Regex from precompiled programs without parsing the
// pattern. The prefilter is not available to loaded expressions.
func Load(p Precompiled) (*Regex, error) {
	flags, err := syntax.ParseFlags(p.Flags)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Flags = flags
	config.EnablePrefilter = false

	code, utf16, err := loadProgram(p.UTF16, true)
	if err != nil {
		return nil, err
	}
	r := &Regex{
		pattern: p.Pattern,
		config:  config,
		log:     nfa.Logger(),
		utf16:   utf16,
		code:    code,
		names:   code.CaptureNames,
	}
	if len(p.Latin1) > 0 {
		r.code8, r.latin1, err = loadProgram(p.Latin1, false)
		if err != nil {
			return nil, err
		}
		if r.latin1.RegisterCount() != utf16.RegisterCount() {
			return nil, fmt.Errorf("%w: register counts %d and %d differ",
				ErrProgramMismatch, r.latin1.RegisterCount(), utf16.RegisterCount())
		}
	}
	r.log.Debug("pattern loaded",
		zap.String("pattern", p.Pattern),
		zap.Bool("latin1", r.latin1 != nil))
	return r, nil
}

// MustLoad is like Load but panics on error. It simplifies initialization
// of package variables holding generated expressions.
func MustLoad(p Precompiled) *Regex {
	r, err := Load(p)
	if err != nil {
		panic("regvm: Load(`" + p.Pattern + "`): " + err.Error())
	}
	return r
}

func loadProgram(data []byte, utf16 bool) (*bytecode.Program, *nfa.Program, error) {
	code := new(bytecode.Program)
	if err := code.UnmarshalBinary(data); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", nfa.ErrInvalidProgram, err)
	}
	if (code.Flags&bytecode.FlagUTF16 != 0) != utf16 {
		return nil, nil, fmt.Errorf("%w: %s", ErrProgramMismatch, code)
	}
	prog, err := nfa.NewProgram(code)
	if err != nil {
		return nil, nil, err
	}
	return code, prog, nil
}
