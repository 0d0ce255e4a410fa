package bytecode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeLayout(t *testing.T) {
	raw := Encode([]Instruction{Fork(7), ConsumeRange('a', 'z')})
	want := []byte{
		byte(OpFork), 0, 0, 0, 7, 0, 0, 0,
		byte(OpConsumeRange), 0, 0, 0, 'a', 0, 'z', 0,
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	code := []Instruction{
		Fork(3),
		Jmp(5),
		ConsumeAny(),
		Jmp(0),
		Assertion(AssertWordBoundary),
		SetRegisterToCP(0),
		BeginLoop(),
		SetQuantifierToClock(2),
		EndLoop(),
		ReadLookaroundTable(LookaroundRef{Index: 4, Kind: Lookbehind, Positive: true}),
		SetRegisterToCP(1),
		Accept(),
		StartLookaround(LookaroundRef{Index: 4, Kind: Lookbehind, Positive: true}),
		WriteLookaroundTable(LookaroundRef{Index: 4, Kind: Lookbehind, Positive: true}),
	}
	got, err := Decode(Encode(code))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(code, got); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"truncated", []byte{0, 0, 0}, ErrTruncated},
		{"unknown opcode", []byte{0xFF, 0, 0, 0, 0, 0, 0, 0}, ErrUnknownOpcode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error %T is not *DecodeError", err)
			}
		})
	}
}

func TestLookaroundPayload(t *testing.T) {
	tests := []LookaroundRef{
		{Index: 0, Kind: Lookahead, Positive: true},
		{Index: 1, Kind: Lookahead, Positive: false},
		{Index: 17, Kind: Lookbehind, Positive: true},
		{Index: MaxLookarounds, Kind: Lookbehind, Positive: false},
	}
	for _, ref := range tests {
		got := ReadLookaroundTable(ref).Lookaround()
		if got != ref {
			t.Errorf("Lookaround() = %+v, want %+v", got, ref)
		}
	}
}

func TestConsumeRangePayload(t *testing.T) {
	lo, hi := ConsumeRange(0x0B, 0xFFFF).Range()
	if lo != 0x0B || hi != 0xFFFF {
		t.Errorf("Range() = (%#x, %#x), want (0xb, 0xffff)", lo, hi)
	}
}

func TestOpcodeIsFilter(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		want := op == OpFilterChild || op == OpFilterGroup ||
			op == OpFilterQuantifier || op == OpFilterLookaround
		if op.IsFilter() != want {
			t.Errorf("%s.IsFilter() = %v, want %v", op, op.IsFilter(), want)
		}
	}
}

func TestProgramMarshalRoundTrip(t *testing.T) {
	p := &Program{
		Code:          []Instruction{SetRegisterToCP(0), ConsumeRange('a', 'a'), SetRegisterToCP(1), Accept()},
		Filter:        []Instruction{FilterChild(1), FilterGroup(1)},
		RegisterCount: 4,
		CaptureNames:  []string{"", "word"},
		Flags:         FlagSticky | FlagUTF16,
	}
	raw, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	var got Program
	if err := got.UnmarshalBinary(raw); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if diff := cmp.Diff(p, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProgramUnmarshalErrors(t *testing.T) {
	valid, _ := (&Program{Code: []Instruction{Accept()}, RegisterCount: 2}).MarshalBinary()

	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"short header", valid[:10], ErrTruncated},
		{"bad magic", append([]byte("XXXX"), valid[4:]...), ErrBadMagic},
		{"truncated code", valid[:len(valid)-1], ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Program
			if err := p.UnmarshalBinary(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("UnmarshalBinary() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		inst Instruction
		want string
	}{
		{ConsumeRange('a', 'a'), "CONSUME_RANGE 'a'"},
		{ConsumeRange('0', '9'), "CONSUME_RANGE ['0'-'9']"},
		{ConsumeAny(), "CONSUME_RANGE [0x0000-0xFFFF]"},
		{Fork(12), "FORK 12"},
		{Assertion(AssertStartOfLine), "ASSERTION START_OF_LINE"},
		{SetRegisterToCP(3), "SET_REGISTER_TO_CP 3"},
		{ReadLookaroundTable(LookaroundRef{Index: 2, Kind: Lookahead}), "READ_LOOKAROUND_TABLE lookahead#2(!)"},
		{Accept(), "ACCEPT"},
	}
	for _, tt := range tests {
		if got := tt.inst.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
