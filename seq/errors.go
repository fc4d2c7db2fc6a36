package seq

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRecordTooLong is returned (possibly wrapped) when a single record does
// not fit into the buffer configured for a reader. Retrying with the same
// buffer cannot succeed, so the read is abandoned.
var ErrRecordTooLong = errors.New("record does not fit into buffer")

// FormatError describes malformed FASTA or FASTQ content. Line is the
// 0-based line number at which the problem was detected, or -1 when the
// line is not known. Error() reports the line 1-based.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s on line %d", e.Msg, e.Line+1)
}

// EncodingError describes a non-ASCII byte in a field that must be ASCII.
type EncodingError struct {
	Field string
	Pos   int
	Char  byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("non-ASCII character %q in %s at position %d", e.Char, e.Field, e.Pos)
}
