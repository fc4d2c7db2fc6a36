// Package bam contains the minimal pieces of the BAM container format
// needed to chunk an uncompressed BAM stream: the magic, the header
// reader, and the record-framing boundary scanner. Full record decoding
// and BGZF handling are out of scope here; callers hand off the raw
// record bytes.
package bam

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Magic is the 4-byte sequence that starts every BAM stream.
var Magic = []byte{'B', 'A', 'M', 0x01}

// ErrTruncated is returned (wrapped) when a BAM stream ends in the middle
// of its header structure. It is distinct from the wrong-magic error so
// that callers can tell corruption from a mislabeled file.
var ErrTruncated = errors.New("truncated BAM file")

// ReadHeader checks the magic at the current stream position and then
// reads the header as ReadHeaderAfterMagic does.
func ReadHeader(r io.Reader) ([]byte, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, truncated(err)
	}
	if !bytes.Equal(magic[:], Magic) {
		return nil, errors.Errorf("not a BAM file: no BAM magic, found %q", magic[:])
	}
	return ReadHeaderAfterMagic(r)
}

// ReadHeaderAfterMagic reads the BAM header from a stream positioned just
// past the magic: the length-prefixed header text, which is returned as an
// opaque blob, and the reference dictionary, which is consumed and
// discarded. On return the stream is positioned at the first alignment
// record.
func ReadHeaderAfterMagic(r io.Reader) ([]byte, error) {
	lText, err := readUint32(r)
	if err != nil {
		return nil, truncated(err)
	}
	header := make([]byte, lText)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, truncated(err)
	}
	nRef, err := readUint32(r)
	if err != nil {
		return nil, truncated(err)
	}
	for i := uint32(0); i < nRef; i++ {
		lName, err := readUint32(r)
		if err != nil {
			return nil, truncated(err)
		}
		// Name bytes plus the fixed 4-byte reference length.
		if _, err := io.CopyN(ioutil.Discard, r, int64(lName)+4); err != nil {
			return nil, truncated(err)
		}
	}
	return header, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrap(ErrTruncated, "unexpected end of file while reading BAM header")
	}
	return err
}
