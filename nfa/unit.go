package nfa

// Unit is a code unit of the input: a byte for one-byte encodings or a
// UTF-16 code unit.
type Unit interface {
	~uint8 | ~uint16
}

func isLineTerminator[U Unit](u U) bool {
	c := uint16(u)
	return c == '\n' || c == '\r' || c == 0x2028 || c == 0x2029
}

func isWordUnit[U Unit](u U) bool {
	c := uint16(u)
	return c == '_' || (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'z')
}
