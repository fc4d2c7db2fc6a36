package seq

import (
	"encoding/binary"

	"github.com/grailbio/base/simd"
)

const asciiMask = 0x8080808080808080

// ASCIIPrefix returns whether every byte in buf[:n] has value <= 127. It
// agrees byte-for-byte with a naive scan for every length, including zero.
// The bulk of the buffer is checked one machine word at a time.
func ASCIIPrefix(buf []byte, n int) bool {
	i := 0
	for ; i+simd.BytesPerWord <= n; i += simd.BytesPerWord {
		if binary.LittleEndian.Uint64(buf[i:])&asciiMask != 0 {
			return false
		}
	}
	for ; i < n; i++ {
		if buf[i] > 127 {
			return false
		}
	}
	return true
}

// ASCII returns whether every byte in buf has value <= 127.
func ASCII(buf []byte) bool {
	return ASCIIPrefix(buf, len(buf))
}

// checkASCII returns an EncodingError locating the first non-ASCII byte in
// s, or nil if s is pure ASCII.
func checkASCII(field, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return &EncodingError{Field: field, Pos: i, Char: s[i]}
		}
	}
	return nil
}
