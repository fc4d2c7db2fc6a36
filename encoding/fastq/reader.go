// Package fastq contains a streaming parser and writer for FASTQ files.
// A FASTQ record is exactly four lines:
//
//	@name
//	ACGT
//	+
//	HHHH
//
// The third line may repeat the name after the '+' ("two-headers"
// variant). Multi-line FASTQ is not supported.
package fastq

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/seqio/seq"
)

// DefaultBufferSize is the initial scan buffer size, matching the buffer
// size used by cat, pigz and friends.
const DefaultBufferSize = 128 * 1024

// Reader reads FASTQ records one at a time. The Scan method advances to
// the next record, returning false at end of input or on error; Err
// reports the error, if any. Readers are not threadsafe.
type Reader struct {
	scanner    *bufio.Scanner
	line       int // 0-based line number of the next line to be read
	rec        *seq.Record
	nrecords   int
	twoHeaders bool
	err        error
	maxLine    int
}

// NewReader constructs a Reader that parses raw FASTQ data from r.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, DefaultBufferSize)
}

// NewReaderSize is like NewReader with an explicit cap on the length of a
// single line. A record with a longer line fails with a capacity error.
func NewReaderSize(r io.Reader, maxLineLength int) *Reader {
	if maxLineLength <= 0 {
		maxLineLength = DefaultBufferSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLength)
	return &Reader{scanner: scanner, maxLine: maxLineLength}
}

// Scan advances to the next record. Once Scan returns false, it never
// returns true again; check Err to distinguish end of input from an error.
func (f *Reader) Scan() bool {
	if f.err != nil {
		return false
	}

	header, ok := f.scanLine()
	if !ok {
		// Clean EOF before a record starts is the only non-error exit.
		return false
	}
	if len(header) == 0 || header[0] != '@' {
		f.err = &seq.FormatError{
			Line: f.line - 1,
			Msg:  fmt.Sprintf("line expected to start with '@', but found %q", shorten(header)),
		}
		return false
	}
	name := string(header[1:])

	sequence, ok := f.scanRequiredLine()
	if !ok {
		return false
	}
	sequenceStr := string(sequence)

	plus, ok := f.scanRequiredLine()
	if !ok {
		return false
	}
	if len(plus) == 0 || plus[0] != '+' {
		f.err = &seq.FormatError{
			Line: f.line - 1,
			Msg:  fmt.Sprintf("line expected to start with '+', but found %q", shorten(plus)),
		}
		return false
	}
	if len(plus) > 1 {
		second := string(plus[1:])
		if second != name {
			f.err = &seq.FormatError{
				Line: f.line - 1,
				Msg:  fmt.Sprintf("sequence descriptions don't match (%q != %q)", name, second),
			}
			return false
		}
		if f.nrecords == 0 {
			f.twoHeaders = true
		}
	}

	qualities, ok := f.scanRequiredLine()
	if !ok {
		return false
	}
	if len(qualities) != len(sequenceStr) {
		f.err = &seq.FormatError{
			Line: f.line - 1,
			Msg: fmt.Sprintf("length of qualities (%d) differs from length of sequence (%d)",
				len(qualities), len(sequenceStr)),
		}
		return false
	}

	rec, err := seq.NewRecordWithQualities(name, sequenceStr, string(qualities))
	if err != nil {
		f.err = err
		return false
	}
	f.rec = rec
	f.nrecords++
	return true
}

// scanLine reads the next line, without its line ending. It returns
// false at end of input or on error.
func (f *Reader) scanLine() ([]byte, bool) {
	if !f.scanner.Scan() {
		if err := f.scanner.Err(); err != nil {
			if err == bufio.ErrTooLong {
				f.err = errors.Wrapf(seq.ErrRecordTooLong, "FASTQ line longer than %d bytes", f.maxLine)
			} else {
				f.err = err
			}
		}
		return nil, false
	}
	f.line++
	return f.scanner.Bytes(), true
}

// scanRequiredLine is scanLine for lines inside a record, where end of
// input means the record is truncated.
func (f *Reader) scanRequiredLine() ([]byte, bool) {
	line, ok := f.scanLine()
	if !ok && f.err == nil {
		f.err = &seq.FormatError{
			Line: f.line,
			Msg:  "premature end of FASTQ file: incomplete final record",
		}
	}
	return line, ok
}

// Record returns the record read by the last successful Scan. The record
// does not alias the Reader's buffers.
func (f *Reader) Record() *seq.Record {
	return f.rec
}

// TwoHeaders reports whether the first record repeated its name on the
// '+' line.
func (f *Reader) TwoHeaders() bool {
	return f.twoHeaders
}

// NumRecords returns the number of records scanned so far.
func (f *Reader) NumRecords() int {
	return f.nrecords
}

// Err returns the reading error, if any.
func (f *Reader) Err() error {
	return f.err
}

// PairReader reads two FASTQ streams in lockstep, verifying that the
// files deliver the same number of reads and that the read names match
// pairwise under the mate-name rule.
type PairReader struct {
	r1, r2 *Reader
	err    error
}

// NewPairReader creates a PairReader from the R1 and R2 streams.
func NewPairReader(r1, r2 io.Reader) *PairReader {
	return &PairReader{r1: NewReader(r1), r2: NewReader(r2)}
}

// Scan advances both streams by one record. Once Scan returns false, it
// never returns true again; check Err afterwards.
func (p *PairReader) Scan() bool {
	if p.err != nil {
		return false
	}
	ok1 := p.r1.Scan()
	ok2 := p.r2.Scan()
	if ok1 != ok2 && p.r1.Err() == nil && p.r2.Err() == nil {
		i, j := 1, 2
		if ok1 {
			i, j = 2, 1
		}
		p.err = &seq.FormatError{
			Line: -1,
			Msg:  fmt.Sprintf("reads are improperly paired: file %d ended before file %d", i, j),
		}
		return false
	}
	if !ok1 || !ok2 {
		return false
	}
	rec1, rec2 := p.r1.Record(), p.r2.Record()
	if !rec1.IsMate(rec2) {
		p.err = &seq.FormatError{
			Line: -1,
			Msg: fmt.Sprintf("reads are improperly paired: read name %q in file 1 does not match %q in file 2",
				rec1.ID(), rec2.ID()),
		}
		return false
	}
	return true
}

// Records returns the record pair read by the last successful Scan.
func (p *PairReader) Records() (*seq.Record, *seq.Record) {
	return p.r1.Record(), p.r2.Record()
}

// NumRecords returns the number of pairs scanned so far.
func (p *PairReader) NumRecords() int {
	n := p.r1.NumRecords()
	if n2 := p.r2.NumRecords(); n2 < n {
		n = n2
	}
	return n
}

// Err returns the reading error, if any.
func (p *PairReader) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}

// shorten truncates long lines for error messages.
func shorten(b []byte) string {
	const n = 100
	if len(b) > n {
		return string(b[:n-3]) + "..."
	}
	return string(b)
}
