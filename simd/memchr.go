package simd

import (
	"encoding/binary"
	"math/bits"
)

// zeroBytes sets the high bit of every zero byte of v. Bits above the first
// zero byte may be spurious, so only the lowest set bit is meaningful.
func zeroBytes(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}

// matchWord returns the zero-byte mask of w against up to three needles.
func matchWord(w uint64, n int, m1, m2, m3 uint64) uint64 {
	z := zeroBytes(w ^ m1)
	if n > 1 {
		z |= zeroBytes(w ^ m2)
	}
	if n > 2 {
		z |= zeroBytes(w ^ m3)
	}
	return z
}

func indexAny(haystack []byte, n int, b1, b2, b3 byte) int {
	m1 := uint64(b1) * lo8
	m2 := uint64(b2) * lo8
	m3 := uint64(b3) * lo8

	i := 0
	if wide {
		for ; i+32 <= len(haystack); i += 32 {
			w0 := binary.LittleEndian.Uint64(haystack[i:])
			w1 := binary.LittleEndian.Uint64(haystack[i+8:])
			w2 := binary.LittleEndian.Uint64(haystack[i+16:])
			w3 := binary.LittleEndian.Uint64(haystack[i+24:])
			z0 := matchWord(w0, n, m1, m2, m3)
			z1 := matchWord(w1, n, m1, m2, m3)
			z2 := matchWord(w2, n, m1, m2, m3)
			z3 := matchWord(w3, n, m1, m2, m3)
			if z0|z1|z2|z3 == 0 {
				continue
			}
			switch {
			case z0 != 0:
				return i + bits.TrailingZeros64(z0)/8
			case z1 != 0:
				return i + 8 + bits.TrailingZeros64(z1)/8
			case z2 != 0:
				return i + 16 + bits.TrailingZeros64(z2)/8
			default:
				return i + 24 + bits.TrailingZeros64(z3)/8
			}
		}
	}
	for ; i+8 <= len(haystack); i += 8 {
		w := binary.LittleEndian.Uint64(haystack[i:])
		if z := matchWord(w, n, m1, m2, m3); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if c := haystack[i]; c == b1 || c == b2 || c == b3 {
			return i
		}
	}
	return -1
}

func firstNonASCII(data []byte) int {
	i := 0
	if wide {
		for ; i+32 <= len(data); i += 32 {
			w := binary.LittleEndian.Uint64(data[i:]) |
				binary.LittleEndian.Uint64(data[i+8:]) |
				binary.LittleEndian.Uint64(data[i+16:]) |
				binary.LittleEndian.Uint64(data[i+24:])
			if w&hi8 != 0 {
				break
			}
		}
	}
	for ; i+8 <= len(data); i += 8 {
		if w := binary.LittleEndian.Uint64(data[i:]); w&hi8 != 0 {
			return i + bits.TrailingZeros64(w&hi8)/8
		}
	}
	for ; i < len(data); i++ {
		if data[i] >= 0x80 {
			return i
		}
	}
	return -1
}
