// Package chunks splits FASTA, FASTQ and uncompressed BAM streams into
// chunks of whole records, without parsing the records themselves. The
// chunks can be handed to worker goroutines or subprocesses that each run
// their own record parser, which is much faster than parsing in a single
// thread.
//
// A boundary scanner ("head" function) takes a buffer and the number of
// valid bytes in it and returns the length of the longest prefix that
// contains only complete records; the remainder is leftover that the
// chunk readers carry over into the next buffer fill.
package chunks

import (
	"bytes"
	"fmt"

	"github.com/grailbio/seqio/seq"
)

var newlineGT = []byte{'\n', '>'}

// FastaHead returns the length of the longest prefix of buf[:end] that
// contains only complete FASTA records. The '>' that terminates the
// prefix stays in the leftover so that the next chunk starts on a record
// boundary. A buffer that holds no record boundary yet yields 0; a buffer
// that does not begin with '>' or a '#' comment is a format error.
func FastaHead(buf []byte, end int) (int, error) {
	if pos := bytes.LastIndex(buf[:end], newlineGT); pos >= 0 {
		return pos + 1, nil
	}
	if end == 0 || buf[0] == '>' || buf[0] == '#' {
		return 0, nil
	}
	return 0, &seq.FormatError{
		Line: -1,
		Msg:  fmt.Sprintf("FASTA file expected to start with '>', but found %q", buf[0:1]),
	}
}

// FastqHead returns the length of the longest prefix of buf[:end] that
// contains a multiple of eight complete lines, i.e. an even number of
// FASTQ records. Aligning to record pairs keeps interleaved paired-end
// data in sync when chunks are processed independently. With no newline
// in the buffer the result is 0.
func FastqHead(buf []byte, end int) int {
	linebreaks := bytes.Count(buf[:end], []byte{'\n'})
	right := end
	for i := 0; i < linebreaks%8+1 && right >= 0; i++ {
		right = bytes.LastIndexByte(buf[:right], '\n')
	}
	// right is -1 when fewer than a full unit of lines is buffered.
	return right + 1
}

// PairedFastaHeads returns (pos1, pos2) such that buf1[:pos1] and
// buf2[:pos2] contain the same number of complete FASTA records. The two
// prefixes generally differ in byte length.
func PairedFastaHeads(buf1, buf2 []byte, end1, end2 int) (int, int, error) {
	if end1 == 0 || end2 == 0 {
		return 0, 0, nil
	}
	if buf1[0] != '>' || buf2[0] != '>' {
		return 0, 0, &seq.FormatError{Line: -1, Msg: "FASTA file expected to start with '>'"}
	}
	n1 := bytes.Count(buf1[:end1], newlineGT)
	n2 := bytes.Count(buf2[:end2], newlineGT)
	n := n1
	if n2 < n {
		n = n2
	}
	return fastaRecordOffset(buf1[:end1], n), fastaRecordOffset(buf2[:end2], n), nil
}

// fastaRecordOffset returns the byte offset just past the n-th record
// boundary, i.e. pointing at the '>' of record n (0-based). n must not
// exceed the number of "\n>" occurrences in buf.
func fastaRecordOffset(buf []byte, n int) int {
	pos := 0
	for ; n > 0; n-- {
		pos += bytes.Index(buf[pos:], newlineGT) + 1
	}
	return pos
}

// PairedFastqHeads returns (pos1, pos2) such that buf1[:pos1] and
// buf2[:pos2] contain the same number of complete FASTQ records: the
// smaller of the two buffers' complete-record counts decides.
func PairedFastqHeads(buf1, buf2 []byte, end1, end2 int) (int, int) {
	records1 := bytes.Count(buf1[:end1], []byte{'\n'}) / 4
	records2 := bytes.Count(buf2[:end2], []byte{'\n'}) / 4
	n := records1
	if records2 < n {
		n = records2
	}
	return fastqRecordOffset(buf1[:end1], n), fastqRecordOffset(buf2[:end2], n)
}

// fastqRecordOffset returns the byte offset just past the 4n-th newline.
func fastqRecordOffset(buf []byte, n int) int {
	pos := 0
	for i := 0; i < 4*n; i++ {
		pos += bytes.IndexByte(buf[pos:], '\n') + 1
	}
	return pos
}
