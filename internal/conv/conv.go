// Package conv provides checked integer narrowing for positions, register
// values and instruction operands.
//
// Overflow here means an input or program exceeded a limit that should
// have been rejected earlier, so the helpers panic instead of returning
// errors.
package conv

import "math"

// IntToInt32 converts a position or register value to int32.
func IntToInt32(n int) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		panic("conv: int out of int32 range")
	}
	return int32(n)
}

// IntToUint32 converts a non-negative index to uint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("conv: int out of uint32 range")
	}
	return uint32(n)
}

// IntToUint16 converts a code unit value to uint16.
func IntToUint16(n int) uint16 {
	if n < 0 || n > math.MaxUint16 {
		panic("conv: int out of uint16 range")
	}
	return uint16(n)
}
