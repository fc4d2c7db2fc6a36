// Package fasta contains a streaming parser for FASTA files. A FASTA
// record is a '>' header line followed by one or more sequence lines:
//
//	>chr7 optional comment
//	ACGTAC
//	GAGGAC
//
// Blank lines are ignored and '#'-prefixed lines are comments. Sequence
// lines may be concatenated as is or joined with their newlines kept,
// depending on Opts.KeepLinebreaks.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/seqio/seq"
)

// DefaultMaxLineLength caps the length of a single input line. A longer
// line means a record does not fit into the scan buffer, which is a fatal
// capacity error.
const DefaultMaxLineLength = 4 * 1024 * 1024

// Opts controls Reader behavior.
type Opts struct {
	// KeepLinebreaks joins multi-line sequences with their newline
	// characters instead of plain concatenation.
	KeepLinebreaks bool
	// MaxLineLength overrides DefaultMaxLineLength when positive.
	MaxLineLength int
}

// Reader reads FASTA records one at a time. The Scan method advances to
// the next record, returning false at end of input or on error; Err
// reports the error, if any. Readers are not threadsafe.
type Reader struct {
	scanner  *bufio.Scanner
	opts     Opts
	line     int // 0-based line number of the next line to be read
	name     string
	haveName bool
	seqBuf   bytes.Buffer
	rec      *seq.Record
	nrecords int
	err      error
	done     bool
}

// NewReader constructs a Reader that parses raw FASTA data from r.
func NewReader(r io.Reader, opts Opts) *Reader {
	maxLine := opts.MaxLineLength
	if maxLine <= 0 {
		maxLine = DefaultMaxLineLength
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLine)
	return &Reader{scanner: scanner, opts: opts}
}

// Scan advances to the next record. Once Scan returns false, it never
// returns true again; check Err to distinguish end of input from an error.
func (f *Reader) Scan() bool {
	if f.err != nil || f.done {
		return false
	}
	for f.scanner.Scan() {
		line := f.scanner.Bytes()
		lineno := f.line
		f.line++
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '#':
			continue
		case '>':
			prev, had := f.name, f.haveName
			f.name = string(line[1:])
			f.haveName = true
			if !had {
				continue
			}
			rec, err := f.buildRecord(prev)
			if err != nil {
				f.err = &seq.FormatError{
					Line: lineno,
					Msg:  err.Error() + " (line number refers to record after the problematic one)",
				}
				return false
			}
			f.rec = rec
			f.nrecords++
			return true
		default:
			if !f.haveName {
				f.err = &seq.FormatError{
					Line: lineno,
					Msg:  fmt.Sprintf("expected '>' at beginning of FASTA record, but got %q", shorten(line)),
				}
				return false
			}
			if !seq.ASCII(line) {
				f.err = &seq.FormatError{
					Line: lineno,
					Msg:  fmt.Sprintf("sequence line is not ASCII: %q", shorten(line)),
				}
				return false
			}
			if f.opts.KeepLinebreaks && f.seqBuf.Len() > 0 {
				f.seqBuf.WriteByte('\n')
			}
			f.seqBuf.Write(line)
		}
	}
	if err := f.scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			f.err = errors.Wrapf(seq.ErrRecordTooLong, "FASTA line longer than %d bytes", f.maxLineLength())
		} else {
			f.err = err
		}
		return false
	}
	f.done = true
	if !f.haveName {
		return false
	}
	f.haveName = false
	rec, err := f.buildRecord(f.name)
	if err != nil {
		f.err = &seq.FormatError{Line: -1, Msg: err.Error()}
		return false
	}
	f.rec = rec
	f.nrecords++
	return true
}

// buildRecord materializes the pending record and resets the sequence
// accumulator. The record copies both fields, so it stays valid across
// further scanning.
func (f *Reader) buildRecord(name string) (*seq.Record, error) {
	sequence := f.seqBuf.String()
	f.seqBuf.Reset()
	return seq.NewRecord(name, sequence)
}

// Record returns the record read by the last successful Scan. The record
// does not alias the Reader's buffers.
func (f *Reader) Record() *seq.Record {
	return f.rec
}

// NumRecords returns the number of records scanned so far.
func (f *Reader) NumRecords() int {
	return f.nrecords
}

// Err returns the reading error, if any.
func (f *Reader) Err() error {
	return f.err
}

func (f *Reader) maxLineLength() int {
	if f.opts.MaxLineLength > 0 {
		return f.opts.MaxLineLength
	}
	return DefaultMaxLineLength
}

// shorten truncates long lines for error messages.
func shorten(b []byte) string {
	const n = 100
	if len(b) > n {
		return string(b[:n-3]) + "..."
	}
	return string(b)
}
