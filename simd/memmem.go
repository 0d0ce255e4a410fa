package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack, or
// -1. An empty needle matches at 0.
//
// Candidates are found by scanning for the needle's rarest byte with
// Memchr; each is screened on the second rarest byte before the full
// needle is compared.
func Memmem(haystack, needle []byte) int {
	switch {
	case len(needle) == 0:
		return 0
	case len(needle) > len(haystack):
		return -1
	case len(needle) == 1:
		return Memchr(haystack, needle[0])
	}
	rare := SelectRareBytes(needle)
	// Candidate rare bytes must leave room for the needle on both sides.
	lo, hi := rare.Index1, len(haystack)-len(needle)+rare.Index1
	for at := lo; at <= hi; {
		i := Memchr(haystack[at:hi+1], rare.Byte1)
		if i < 0 {
			return -1
		}
		at += i
		start := at - rare.Index1
		if haystack[start+rare.Index2] == rare.Byte2 && bytes.Equal(haystack[start:start+len(needle)], needle) {
			return start
		}
		at++
	}
	return -1
}
