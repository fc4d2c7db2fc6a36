package fastq

import (
	"fmt"
	"io"

	"github.com/grailbio/seqio/seq"
)

// InterleavedReader reads read pairs from a single FASTQ stream whose
// records alternate R1, R2, R1, R2. Mate names are verified pairwise,
// and a stream ending on an odd record fails.
type InterleavedReader struct {
	r          *Reader
	rec1, rec2 *seq.Record
	npairs     int
	err        error
}

// NewInterleavedReader creates an InterleavedReader reading from r.
func NewInterleavedReader(r io.Reader) *InterleavedReader {
	return &InterleavedReader{r: NewReader(r)}
}

// Scan advances by one record pair. Once Scan returns false, it never
// returns true again; check Err afterwards.
func (m *InterleavedReader) Scan() bool {
	if m.err != nil {
		return false
	}
	if !m.r.Scan() {
		return false
	}
	rec1 := m.r.Record()
	if !m.r.Scan() {
		if m.r.Err() == nil {
			m.err = &seq.FormatError{
				Line: -1,
				Msg:  fmt.Sprintf("interleaved input ended with the unpaired read %q", rec1.ID()),
			}
		}
		return false
	}
	rec2 := m.r.Record()
	if !rec1.IsMate(rec2) {
		m.err = &seq.FormatError{
			Line: -1,
			Msg: fmt.Sprintf("reads are improperly paired: read name %q does not match %q in the following record",
				rec1.ID(), rec2.ID()),
		}
		return false
	}
	m.rec1, m.rec2 = rec1, rec2
	m.npairs++
	return true
}

// Records returns the record pair read by the last successful Scan.
func (m *InterleavedReader) Records() (*seq.Record, *seq.Record) {
	return m.rec1, m.rec2
}

// NumRecords returns the number of pairs scanned so far.
func (m *InterleavedReader) NumRecords() int {
	return m.npairs
}

// Err returns the reading error, if any.
func (m *InterleavedReader) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.r.Err()
}

// InterleavedWriter writes read pairs to a single FASTQ stream,
// alternating R1 and R2 records.
type InterleavedWriter struct {
	w *Writer
}

// NewInterleavedWriter constructs an InterleavedWriter writing to w.
func NewInterleavedWriter(w io.Writer, twoHeaders bool) *InterleavedWriter {
	return &InterleavedWriter{w: NewWriter(w, twoHeaders)}
}

// Write writes one read pair. It does not verify that the two records
// are mates; use seq.RecordsAreMates when that matters.
func (p *InterleavedWriter) Write(r1, r2 *seq.Record) error {
	if err := p.w.Write(r1); err != nil {
		return err
	}
	return p.w.Write(r2)
}
