package regvm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coregx/regvm/nfa"
	"github.com/coregx/regvm/syntax"
)

// ErrInvalidConfig is returned by CompileWithConfig for unusable settings.
var ErrInvalidConfig = errors.New("regvm: invalid config")

// Config controls compilation and matching.
type Config struct {
	// Flags are the pattern flags (i, m, s, y).
	Flags syntax.Flags

	// MaxMemory bounds the bytes held by live threads during one search.
	// Zero selects nfa.DefaultMaxMemory; negative disables the limit.
	MaxMemory int

	// Origin selects how interrupts are serviced by the Context methods.
	// With nfa.OriginGenerated an interrupted search is retried after the
	// interrupt has been handled.
	Origin nfa.CallOrigin

	// EnablePrefilter lets searches over ASCII input skip ahead to
	// positions where a required prefix literal occurs.
	// Default: true
	EnablePrefilter bool

	// MaxInstructions bounds the size of the compiled program.
	// Default: 1 << 20
	MaxInstructions int

	// Logger receives debug events. Nil uses nfa.Logger().
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used by Compile.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter: true,
		MaxInstructions: 1 << 20,
	}
}

// Validate reports whether the configuration can be used.
func (c Config) Validate() error {
	if c.Flags&^(syntax.FoldCase|syntax.Multiline|syntax.DotAll|syntax.Sticky) != 0 {
		return fmt.Errorf("%w: unknown flags %#x", ErrInvalidConfig, uint8(c.Flags))
	}
	if c.Origin > nfa.OriginGenerated {
		return fmt.Errorf("%w: unknown call origin %d", ErrInvalidConfig, c.Origin)
	}
	if c.MaxInstructions < 0 {
		return fmt.Errorf("%w: MaxInstructions must be non-negative, got %d", ErrInvalidConfig, c.MaxInstructions)
	}
	return nil
}
