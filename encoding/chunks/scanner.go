package chunks

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/seqio/encoding/bam"
	"github.com/grailbio/seqio/seq"
)

// ErrUnknownFormat is returned when the first bytes of the input match
// none of the known format markers.
var ErrUnknownFormat = errors.New("cannot determine input file format")

// DefaultBufferSize is the default chunk buffer size and therefore the
// largest possible chunk.
const DefaultBufferSize = 4 * 1024 * 1024

// minBufferSize keeps the sniffing logic out of trouble on absurdly small
// buffers.
const minBufferSize = 16

// format is the closed set of stream formats a scanner can be locked to.
// It is chosen once, when the first bytes of the stream are sniffed.
type format int

const (
	formatUnknown format = iota
	formatFasta
	formatFastq
	formatBAM
)

// Scanner slices a FASTA, FASTQ or uncompressed BAM stream into chunks of
// whole records. The Scan method advances to the next chunk, returning
// false at end of input or on error.
//
// The chunk returned by Chunk borrows from the Scanner's internal buffer
// and is only valid until the next call to Scan: callers must fully
// process or copy a chunk before scanning again.
type Scanner struct {
	r        io.Reader
	buf      []byte
	start    int // leftover bytes at the front of buf, carried over
	bufend   int // valid bytes in buf
	chunk    []byte
	consumed int // bytes yielded by the previous Scan, compacted lazily
	format   format
	header   []byte
	sniffed  bool
	done     bool
	err      error
}

// NewScanner constructs a Scanner reading from r. bufferSize is the
// buffer capacity and therefore the largest chunk and the largest
// supported record; 0 means DefaultBufferSize.
func NewScanner(r io.Reader, bufferSize int) *Scanner {
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &Scanner{r: r, buf: make([]byte, bufferSize)}
}

// Scan advances to the next chunk. Once Scan returns false, it never
// returns true again; check Err to distinguish end of input from an
// error.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}
	if !s.sniffed {
		if !s.sniff() {
			return false
		}
	}
	// The previous chunk has been consumed; move its leftover to the
	// front of the buffer.
	if s.consumed > 0 {
		copy(s.buf, s.buf[s.consumed:s.bufend])
		s.start = s.bufend - s.consumed
		s.consumed = 0
	}

	for {
		if s.start == len(s.buf) {
			s.err = errors.Wrapf(seq.ErrRecordTooLong, "buffer size %d", len(s.buf))
			return false
		}
		n, err := readFull(s.r, s.buf[s.start:])
		if err != nil {
			s.err = err
			return false
		}
		if n == 0 {
			// End of input: flush any leftover as the final chunk, even
			// though no scanner judged it complete.
			s.done = true
			if s.start > 0 {
				s.chunk = s.buf[:s.start]
				s.start = 0
				return true
			}
			return false
		}
		s.bufend = s.start + n
		end, err := s.head(s.buf, s.bufend)
		if err != nil {
			s.err = err
			return false
		}
		if end == 0 {
			// No boundary yet; keep everything and read more.
			s.start = s.bufend
			continue
		}
		s.chunk = s.buf[:end]
		s.consumed = end
		return true
	}
}

// Chunk returns the chunk read by the last successful Scan. The returned
// slice is invalidated by the next Scan.
func (s *Scanner) Chunk() []byte {
	return s.chunk
}

// Header returns the BAM header text when the input was sniffed as BAM,
// nil otherwise.
func (s *Scanner) Header() []byte {
	return s.header
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// sniff reads up to 4 bytes and locks the scanner to a format. For BAM it
// also consumes the container header so that chunking starts at the first
// record.
func (s *Scanner) sniff() bool {
	s.sniffed = true
	n, err := readFull(s.r, s.buf[:4])
	if err != nil {
		s.err = err
		return false
	}
	if n == 0 {
		// Empty input: no chunks, no error.
		s.done = true
		return false
	}
	s.start = n
	switch {
	case s.buf[0] == '@':
		s.format = formatFastq
	case s.buf[0] == '>' || s.buf[0] == '#':
		s.format = formatFasta
	case n == 4 && bytes.Equal(s.buf[:4], bam.Magic):
		s.format = formatBAM
		header, err := bam.ReadHeaderAfterMagic(s.r)
		if err != nil {
			s.err = err
			return false
		}
		s.header = header
		// The magic is part of the header, not of any record.
		s.start = 0
	default:
		s.err = errors.Wrapf(ErrUnknownFormat,
			"first characters expected to be '>', '@' or \"BAM\\x01\", but found %q", s.buf[:n])
		return false
	}
	return true
}

// head dispatches to the boundary scanner for the sniffed format.
func (s *Scanner) head(buf []byte, end int) (int, error) {
	switch s.format {
	case formatFasta:
		return FastaHead(buf, end)
	case formatFastq:
		return FastqHead(buf, end), nil
	case formatBAM:
		return bam.Head(buf, end), nil
	}
	panic("chunks: head called before format was sniffed")
}

// readFull fills buf from r as far as the source allows. It returns 0 at
// end of input and never a bare io.EOF.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}
