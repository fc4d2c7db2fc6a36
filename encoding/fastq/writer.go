package fastq

import (
	"io"

	"github.com/grailbio/seqio/seq"
)

// Writer is a FASTQ file writer. The two-headers choice is made at
// construction and checked on every write; records are serialized via
// Record.FastqBytes so the output is byte-identical to the
// @name/sequence/+[name]/qualities template.
type Writer struct {
	w          io.Writer
	twoHeaders bool
	err        error
}

// NewWriter constructs a Writer that writes records to w. When twoHeaders
// is set, every record's name is repeated on its '+' line.
func NewWriter(w io.Writer, twoHeaders bool) *Writer {
	return &Writer{w: w, twoHeaders: twoHeaders}
}

// Write writes the record r in FASTQ format. An error is returned if the
// record has no qualities or the write failed; after the first error all
// further writes are no-ops returning the same error.
func (w *Writer) Write(r *seq.Record) error {
	if w.err != nil {
		return w.err
	}
	b, err := r.FastqBytes(w.twoHeaders)
	if err != nil {
		w.err = err
		return w.err
	}
	_, w.err = w.w.Write(b)
	return w.err
}

// PairWriter writes read pairs to two FASTQ streams.
type PairWriter struct {
	w1, w2 *Writer
}

// NewPairWriter constructs a PairWriter that writes R1 records to w1 and
// R2 records to w2.
func NewPairWriter(w1, w2 io.Writer, twoHeaders bool) *PairWriter {
	return &PairWriter{w1: NewWriter(w1, twoHeaders), w2: NewWriter(w2, twoHeaders)}
}

// Write writes one read pair. It does not verify that the two records are
// mates; use seq.RecordsAreMates when that matters.
func (p *PairWriter) Write(r1, r2 *seq.Record) error {
	if err := p.w1.Write(r1); err != nil {
		return err
	}
	return p.w2.Write(r2)
}
