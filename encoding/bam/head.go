package bam

import "encoding/binary"

// Head returns the length of the longest prefix of buf[:end] that
// contains only whole alignment records. Each record is framed by its own
// little-endian uint32 block size, so the scan walks the frames forward
// and stops at the first record that is not fully buffered.
func Head(buf []byte, end int) int {
	pos := 0
	for pos+4 <= end {
		// 64-bit arithmetic: block sizes above 2^31 must not wrap int
		// on 32-bit platforms.
		blockSize := binary.LittleEndian.Uint32(buf[pos:])
		next := int64(pos) + 4 + int64(blockSize)
		if next > int64(end) {
			break
		}
		pos = int(next)
	}
	return pos
}
