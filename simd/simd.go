// Package simd provides byte search primitives for prefilters. The kernels
// are SWAR (SIMD within a register): they test eight bytes per uint64 with
// the classic zero-byte detection trick.
//
// On CPUs with wide vector units the kernels process four words per loop
// iteration, which keeps more loads in flight; elsewhere they process one.
// The choice is made once at package initialization.
package simd

import "golang.org/x/sys/cpu"

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// wide selects the four-word loop bodies.
var wide = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// Memchr returns the index of the first needle in haystack, or -1.
func Memchr(haystack []byte, needle byte) int {
	return indexAny(haystack, 1, needle, needle, needle)
}

// Memchr2 returns the index of the first n1 or n2 in haystack, or -1.
func Memchr2(haystack []byte, n1, n2 byte) int {
	return indexAny(haystack, 2, n1, n2, n2)
}

// Memchr3 returns the index of the first n1, n2 or n3 in haystack, or -1.
func Memchr3(haystack []byte, n1, n2, n3 byte) int {
	return indexAny(haystack, 3, n1, n2, n3)
}

// IsASCII reports whether every byte of data is below 0x80.
func IsASCII(data []byte) bool {
	return firstNonASCII(data) < 0
}
