package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// InstructionSize is the encoded size of one instruction in bytes:
// a little-endian uint32 opcode followed by a little-endian uint32 payload.
const InstructionSize = 8

// Common decoding errors
var (
	// ErrTruncated indicates the input ends in the middle of an instruction or header.
	ErrTruncated = errors.New("truncated bytecode")

	// ErrUnknownOpcode indicates an opcode outside the instruction set.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrBadMagic indicates the program container does not start with the expected magic.
	ErrBadMagic = errors.New("not a regvm program")

	// ErrVersion indicates an unsupported program container version.
	ErrVersion = errors.New("unsupported program version")
)

// DecodeError reports where decoding failed.
type DecodeError struct {
	Offset int
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("bytecode: decode failed at byte %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes instructions into their wire representation.
func Encode(code []Instruction) []byte {
	buf := make([]byte, len(code)*InstructionSize)
	for i, inst := range code {
		off := i * InstructionSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(inst.Op))
		binary.LittleEndian.PutUint32(buf[off+4:], inst.Payload)
	}
	return buf
}

// Decode parses the wire representation produced by Encode.
// It validates the length and opcode range but not control flow.
func Decode(raw []byte) ([]Instruction, error) {
	if len(raw)%InstructionSize != 0 {
		return nil, &DecodeError{Offset: len(raw) - len(raw)%InstructionSize, Err: ErrTruncated}
	}
	code := make([]Instruction, len(raw)/InstructionSize)
	for i := range code {
		off := i * InstructionSize
		op := binary.LittleEndian.Uint32(raw[off:])
		if op >= uint32(opcodeCount) {
			return nil, &DecodeError{Offset: off, Err: fmt.Errorf("%w %d", ErrUnknownOpcode, op)}
		}
		code[i] = Instruction{
			Op:      Opcode(op),
			Payload: binary.LittleEndian.Uint32(raw[off+4:]),
		}
	}
	return code, nil
}
