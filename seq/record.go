// Package seq provides the in-memory model for sequencing reads: the
// Record type with its validation invariants, mate-name matching, reverse
// complementing and fast ASCII checking.
package seq

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Record is one sequencing read: a header (name), the residue letters
// (sequence) and, for quality-bearing formats, a quality string of exactly
// the same length as the sequence. All three fields are ASCII; this is
// enforced on construction and on every mutation.
//
// A Record owns its fields outright. Parsers copy out of their reusable
// scan buffers before constructing one, so a Record stays valid for as
// long as the caller keeps it.
type Record struct {
	name      string
	sequence  string
	qualities string
	hasQuals  bool
}

// NewRecord returns a record without qualities, as produced by FASTA input.
func NewRecord(name, sequence string) (*Record, error) {
	if err := checkASCII("name", name); err != nil {
		return nil, err
	}
	if err := checkASCII("sequence", sequence); err != nil {
		return nil, err
	}
	return &Record{name: name, sequence: sequence}, nil
}

// NewRecordWithQualities returns a record with qualities, as produced by
// FASTQ input. len(qualities) must equal len(sequence).
func NewRecordWithQualities(name, sequence, qualities string) (*Record, error) {
	r, err := NewRecord(name, sequence)
	if err != nil {
		return nil, err
	}
	if err := checkASCII("qualities", qualities); err != nil {
		return nil, err
	}
	if len(qualities) != len(sequence) {
		return nil, &FormatError{
			Line: -1,
			Msg: fmt.Sprintf("length of qualities (%d) differs from length of sequence (%d)",
				len(qualities), len(sequence)),
		}
	}
	r.qualities = qualities
	r.hasQuals = true
	return r, nil
}

// Name returns the full header text, without the leading format marker.
func (r *Record) Name() string { return r.name }

// Sequence returns the residue letters.
func (r *Record) Sequence() string { return r.sequence }

// Qualities returns the quality string and whether one is present.
func (r *Record) Qualities() (string, bool) { return r.qualities, r.hasQuals }

// SetName replaces the header text.
func (r *Record) SetName(name string) error {
	if err := checkASCII("name", name); err != nil {
		return err
	}
	r.name = name
	return nil
}

// SetSequence replaces the sequence. When qualities are present, the new
// sequence must have the same length as the qualities.
func (r *Record) SetSequence(sequence string) error {
	if err := checkASCII("sequence", sequence); err != nil {
		return err
	}
	if r.hasQuals && len(r.qualities) != len(sequence) {
		return &FormatError{
			Line: -1,
			Msg: fmt.Sprintf("length of qualities (%d) differs from length of sequence (%d)",
				len(r.qualities), len(sequence)),
		}
	}
	r.sequence = sequence
	return nil
}

// SetQualities replaces (or adds) the quality string, which must have the
// same length as the sequence.
func (r *Record) SetQualities(qualities string) error {
	if err := checkASCII("qualities", qualities); err != nil {
		return err
	}
	if len(qualities) != len(r.sequence) {
		return &FormatError{
			Line: -1,
			Msg: fmt.Sprintf("length of qualities (%d) differs from length of sequence (%d)",
				len(qualities), len(r.sequence)),
		}
	}
	r.qualities = qualities
	r.hasQuals = true
	return nil
}

// ClearQualities removes the quality string.
func (r *Record) ClearQualities() {
	r.qualities = ""
	r.hasQuals = false
}

// ID returns the part of the name up to the first run of whitespace. It is
// derived on every call; the name is the single source of truth.
func (r *Record) ID() string {
	return recordID(r.name)
}

// Comment returns the part of the name after the first run of whitespace,
// and whether such a part exists.
func (r *Record) Comment() (string, bool) {
	i := strings.IndexFunc(r.name, unicode.IsSpace)
	if i < 0 {
		return "", false
	}
	rest := strings.TrimLeftFunc(r.name[i:], unicode.IsSpace)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// IsMate reports whether r and other form a read pair according to
// NamesMatch.
func (r *Record) IsMate(other *Record) bool {
	return NamesMatch(r.name, other.name)
}

// Equal reports whether two records have identical fields.
func (r *Record) Equal(other *Record) bool {
	return r.name == other.name &&
		r.sequence == other.sequence &&
		r.hasQuals == other.hasQuals &&
		r.qualities == other.qualities
}

// FastqBytes serializes the record as one FASTQ block:
//
//	@name\nsequence\n+[name]\nqualities\n
//
// The name is repeated on the '+' line iff twoHeaders is set. The record
// must have qualities.
func (r *Record) FastqBytes(twoHeaders bool) ([]byte, error) {
	if !r.hasQuals {
		return nil, errors.Errorf("record %q has no qualities and cannot be serialized as FASTQ", r.ID())
	}
	n := len(r.name) + len(r.sequence) + len(r.qualities) + 6
	if twoHeaders {
		n += len(r.name)
	}
	b := make([]byte, 0, n)
	b = append(b, '@')
	b = append(b, r.name...)
	b = append(b, '\n')
	b = append(b, r.sequence...)
	b = append(b, '\n', '+')
	if twoHeaders {
		b = append(b, r.name...)
	}
	b = append(b, '\n')
	b = append(b, r.qualities...)
	b = append(b, '\n')
	return b, nil
}
