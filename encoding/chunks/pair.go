package chunks

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/seqio/seq"
)

// PairScanner slices two FASTA or FASTQ streams into chunk pairs that
// contain the same number of records, so that each pair can be processed
// independently without breaking read mates apart. BAM is not supported;
// paired reads in BAM live in a single file.
//
// The chunks returned by Chunks borrow from the PairScanner's internal
// buffers and are only valid until the next call to Scan.
type PairScanner struct {
	r1, r2               io.Reader
	buf1, buf2           []byte
	start1, start2       int
	bufend1, bufend2     int
	consumed1, consumed2 int
	eof1, eof2           bool
	chunk1, chunk2       []byte
	format               format
	sniffed              bool
	done                 bool
	err                  error
}

// NewPairScanner constructs a PairScanner reading from r1 and r2.
// bufferSize is the capacity of each of the two buffers; 0 means
// DefaultBufferSize.
func NewPairScanner(r1, r2 io.Reader, bufferSize int) *PairScanner {
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &PairScanner{
		r1:   r1,
		r2:   r2,
		buf1: make([]byte, bufferSize),
		buf2: make([]byte, bufferSize),
	}
}

// Scan advances to the next chunk pair. Once Scan returns false, it never
// returns true again; check Err to distinguish end of input from an
// error.
func (s *PairScanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}
	if !s.sniffed {
		if !s.sniff() {
			return false
		}
	}
	if s.consumed1 > 0 {
		copy(s.buf1, s.buf1[s.consumed1:s.bufend1])
		s.start1 = s.bufend1 - s.consumed1
		s.consumed1 = 0
	}
	if s.consumed2 > 0 {
		copy(s.buf2, s.buf2[s.consumed2:s.bufend2])
		s.start2 = s.bufend2 - s.consumed2
		s.consumed2 = 0
	}

	for {
		if s.start1 == len(s.buf1) && s.start2 == len(s.buf2) {
			s.err = errors.Wrapf(seq.ErrRecordTooLong, "buffer size %d", len(s.buf1))
			return false
		}
		n1, err := s.fill(s.r1, s.buf1[s.start1:], &s.eof1)
		if err != nil {
			s.err = err
			return false
		}
		n2, err := s.fill(s.r2, s.buf2[s.start2:], &s.eof2)
		if err != nil {
			s.err = err
			return false
		}
		s.bufend1 = s.start1 + n1
		s.bufend2 = s.start2 + n2
		if n1 == 0 && n2 == 0 {
			// No new bytes from either side: flush whatever is left as
			// the final pair.
			s.done = true
			if s.bufend1 > 0 || s.bufend2 > 0 {
				s.chunk1 = s.buf1[:s.bufend1]
				s.chunk2 = s.buf2[:s.bufend2]
				s.start1, s.start2 = 0, 0
				s.bufend1, s.bufend2 = 0, 0
				return true
			}
			return false
		}
		end1, end2, err := s.heads()
		if err != nil {
			s.err = err
			return false
		}
		if end1 == 0 && end2 == 0 {
			if s.format == formatFastq {
				// At least one fill produced new bytes, and a FASTQ
				// buffer holds a complete record as soon as it holds four
				// newlines. An empty cut therefore means the shorter
				// input ended mid-stream and the pairing cannot be kept.
				msg := "premature end of paired-end input"
				if which := s.emptySide(); which != 0 {
					msg = fmt.Sprintf("%s: file with R%d reads ended early", msg, which)
				}
				s.err = &seq.FormatError{Line: -1, Msg: msg}
				return false
			}
			s.start1 = s.bufend1
			s.start2 = s.bufend2
			continue
		}
		s.chunk1 = s.buf1[:end1]
		s.chunk2 = s.buf2[:end2]
		s.consumed1 = end1
		s.consumed2 = end2
		return true
	}
}

// Chunks returns the chunk pair read by the last successful Scan. The two
// chunks hold the same number of records. The returned slices are
// invalidated by the next Scan.
func (s *PairScanner) Chunks() ([]byte, []byte) {
	return s.chunk1, s.chunk2
}

// Err returns the scanning error, if any.
func (s *PairScanner) Err() error {
	return s.err
}

// sniff reads one byte from each input and locks the pair to a shared
// format.
func (s *PairScanner) sniff() bool {
	s.sniffed = true
	n1, err := readFull(s.r1, s.buf1[:1])
	if err != nil {
		s.err = err
		return false
	}
	n2, err := readFull(s.r2, s.buf2[:1])
	if err != nil {
		s.err = err
		return false
	}
	if n1 == 0 && n2 == 0 {
		s.done = true
		return false
	}
	if n1 == 0 || n2 == 0 {
		which, other := 1, 2
		if n2 == 0 {
			which, other = 2, 1
		}
		s.err = &seq.FormatError{
			Line: -1,
			Msg: errors.Errorf(
				"paired-end reads not in sync: file with R%d reads is empty while the R%d file is not",
				which, other).Error(),
		}
		return false
	}
	f1, err := sniffMarker(s.buf1[0])
	if err != nil {
		s.err = err
		return false
	}
	f2, err := sniffMarker(s.buf2[0])
	if err != nil {
		s.err = err
		return false
	}
	if f1 != f2 {
		s.err = &seq.FormatError{
			Line: -1,
			Msg:  "paired-end input files have different formats",
		}
		return false
	}
	s.format = f1
	s.start1, s.start2 = 1, 1
	return true
}

// heads runs the paired boundary scanner for the sniffed format.
func (s *PairScanner) heads() (int, int, error) {
	switch s.format {
	case formatFasta:
		return PairedFastaHeads(s.buf1, s.buf2, s.bufend1, s.bufend2)
	case formatFastq:
		end1, end2 := PairedFastqHeads(s.buf1, s.buf2, s.bufend1, s.bufend2)
		return end1, end2, nil
	}
	panic("chunks: heads called before format was sniffed")
}

// fill reads into buf unless the input already hit end of file.
func (s *PairScanner) fill(r io.Reader, buf []byte, eof *bool) (int, error) {
	if *eof || len(buf) == 0 {
		return 0, nil
	}
	n, err := readFull(r, buf)
	if err != nil {
		return 0, err
	}
	if n < len(buf) {
		*eof = true
	}
	return n, nil
}

// emptySide reports which input, if any, has a completely empty buffer.
// It returns 1 or 2, or 0 when both sides still hold data.
func (s *PairScanner) emptySide() int {
	if s.bufend1 == 0 {
		return 1
	}
	if s.bufend2 == 0 {
		return 2
	}
	return 0
}

// sniffMarker maps a leading byte to a paired-end capable format.
func sniffMarker(c byte) (format, error) {
	switch c {
	case '@':
		return formatFastq, nil
	case '>', '#':
		return formatFasta, nil
	}
	return formatUnknown, errors.Wrapf(ErrUnknownFormat,
		"first character expected to be '>' or '@', but found %q", []byte{c})
}
