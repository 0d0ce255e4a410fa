package simd

// byteRanks orders bytes by how often they occur in a mix of English
// text, source code and binary data. A lower rank is a rarer byte.
var byteRanks = [256]byte{
	// control characters; tab, newline and carriage return rank 1
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// space and punctuation
	255, 60, 140, 50, 40, 35, 30, 160, 130, 130, 80, 55, 200, 140, 210, 100,
	// digits, : ; < = > ?
	180, 190, 170, 150, 140, 140, 130, 120, 120, 120, 150, 100, 70, 160, 70, 50,
	// @ A-O
	25, 120, 80, 90, 85, 130, 75, 70, 80, 115, 30, 35, 90, 85, 100, 105,
	// P-Z [ \ ] ^ _
	80, 15, 100, 110, 115, 70, 45, 55, 20, 50, 10, 90, 60, 90, 20, 110,
	// ` a-o
	30, 225, 140, 170, 165, 245, 135, 130, 150, 200, 25, 65, 175, 155, 195, 205,
	// p-z { | } ~ DEL
	145, 15, 195, 200, 215, 150, 75, 95, 45, 120, 20, 85, 40, 85, 15, 0,
	// non-ASCII
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
}

// ByteRank returns the frequency rank of b. Lower values are rarer.
func ByteRank(b byte) byte {
	return byteRanks[b]
}

// RareBytes names the two rarest bytes of a needle and where they occur.
type RareBytes struct {
	Byte1  byte
	Index1 int
	Byte2  byte
	Index2 int
}

// SelectRareBytes picks the rarest byte of needle and the rarest byte
// different from it. When needle holds a single distinct byte, both
// entries name the same byte. A needle of one byte yields that byte twice
// at index 0; an empty needle yields the zero value.
func SelectRareBytes(needle []byte) RareBytes {
	switch len(needle) {
	case 0:
		return RareBytes{}
	case 1:
		return RareBytes{Byte1: needle[0], Byte2: needle[0]}
	}
	r := RareBytes{Byte1: needle[0], Index1: 0, Byte2: needle[1], Index2: 1}
	if byteRanks[r.Byte2] < byteRanks[r.Byte1] {
		r.Byte1, r.Byte2 = r.Byte2, r.Byte1
		r.Index1, r.Index2 = r.Index2, r.Index1
	}
	for i := 2; i < len(needle); i++ {
		b := needle[i]
		switch rank := byteRanks[b]; {
		case rank < byteRanks[r.Byte1]:
			r.Byte2, r.Index2 = r.Byte1, r.Index1
			r.Byte1, r.Index1 = b, i
		case b != r.Byte1 && (r.Byte2 == r.Byte1 || rank < byteRanks[r.Byte2]):
			r.Byte2, r.Index2 = b, i
		}
	}
	return r
}
