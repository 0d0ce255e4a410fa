package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Program is the output of the compiler: the main instruction stream with its
// lookaround sub-programs, the filter program, and the register layout.
//
// The binary container produced by MarshalBinary is:
//
//	magic "RGVM" | version u16 | flags u16 | registerCount u32
//	codeLen u32 | filterLen u32 | nameCount u32
//	code (codeLen instructions) | filter (filterLen instructions)
//	names (u32 length + UTF-8 bytes each)
//
// All integers are little-endian.
type Program struct {
	// Code holds the main program followed by lookaround sub-programs.
	Code []Instruction

	// Filter holds the capture filter program (possibly empty).
	Filter []Instruction

	// RegisterCount is the number of registers per match: two per group,
	// group 0 being the whole match.
	RegisterCount int

	// CaptureNames has one entry per group; unnamed groups are "".
	CaptureNames []string

	// Flags records compile-time properties (see ProgramFlag).
	Flags ProgramFlag
}

// ProgramFlag records properties of a compiled program.
type ProgramFlag uint16

const (
	// FlagSticky marks programs without the unanchored search prefix.
	FlagSticky ProgramFlag = 1 << iota

	// FlagUTF16 marks programs compiled for UTF-16 code units.
	FlagUTF16
)

var programMagic = [4]byte{'R', 'G', 'V', 'M'}

const (
	programVersion    = 1
	programHeaderSize = 4 + 2 + 2 + 4 + 4 + 4 + 4
)

// GroupCount returns the number of groups, including group 0.
func (p *Program) GroupCount() int {
	return p.RegisterCount / 2
}

// EncodedCode returns the wire form of the main program.
func (p *Program) EncodedCode() []byte {
	return Encode(p.Code)
}

// EncodedFilter returns the wire form of the filter program.
func (p *Program) EncodedFilter() []byte {
	return Encode(p.Filter)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Program) MarshalBinary() ([]byte, error) {
	size := programHeaderSize + (len(p.Code)+len(p.Filter))*InstructionSize
	for _, name := range p.CaptureNames {
		size += 4 + len(name)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, programMagic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, programVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(p.Flags))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.RegisterCount))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Code)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Filter)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.CaptureNames)))
	buf = append(buf, Encode(p.Code)...)
	buf = append(buf, Encode(p.Filter)...)
	for _, name := range p.CaptureNames {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(name)))
		buf = append(buf, name...)
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Program) UnmarshalBinary(data []byte) error {
	if len(data) < programHeaderSize {
		return &DecodeError{Offset: len(data), Err: ErrTruncated}
	}
	if [4]byte(data[:4]) != programMagic {
		return &DecodeError{Offset: 0, Err: ErrBadMagic}
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != programVersion {
		return &DecodeError{Offset: 4, Err: fmt.Errorf("%w %d", ErrVersion, v)}
	}
	flags := ProgramFlag(binary.LittleEndian.Uint16(data[6:]))
	registers := int(binary.LittleEndian.Uint32(data[8:]))
	codeLen := int(binary.LittleEndian.Uint32(data[12:]))
	filterLen := int(binary.LittleEndian.Uint32(data[16:]))
	nameCount := int(binary.LittleEndian.Uint32(data[20:]))

	off := programHeaderSize
	codeEnd := off + codeLen*InstructionSize
	filterEnd := codeEnd + filterLen*InstructionSize
	if codeLen < 0 || filterLen < 0 || filterEnd > len(data) || filterEnd < off {
		return &DecodeError{Offset: off, Err: ErrTruncated}
	}
	code, err := Decode(data[off:codeEnd])
	if err != nil {
		return err
	}
	filter, err := Decode(data[codeEnd:filterEnd])
	if err != nil {
		return err
	}

	off = filterEnd
	names := make([]string, 0, nameCount)
	for i := 0; i < nameCount; i++ {
		if off+4 > len(data) {
			return &DecodeError{Offset: off, Err: ErrTruncated}
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || off+n > len(data) {
			return &DecodeError{Offset: off, Err: ErrTruncated}
		}
		names = append(names, string(data[off:off+n]))
		off += n
	}

	*p = Program{
		Code:          code,
		Filter:        filter,
		RegisterCount: registers,
		CaptureNames:  names,
		Flags:         flags,
	}
	return nil
}

// String returns a compact summary of the program
func (p *Program) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Program{code: %d, filter: %d, registers: %d", len(p.Code), len(p.Filter), p.RegisterCount)
	if p.Flags&FlagSticky != 0 {
		sb.WriteString(", sticky")
	}
	if p.Flags&FlagUTF16 != 0 {
		sb.WriteString(", utf16")
	}
	sb.WriteString("}")
	return sb.String()
}
