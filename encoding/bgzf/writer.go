// Package bgzf contains a Writer for the .bgzf (block gzipped) file
// format used by .bam files. A .bgzf file is a sequence of complete gzip
// blocks, each holding at most 64KB of uncompressed data, followed by a
// 28 byte terminator block with an empty payload. Every block carries the
// compressed block size in a gzip Extra subfield, which lets readers seek
// to a block without decompressing its predecessors.
//
// For details see the SAM/BAM specification:
// https://samtools.github.io/hts-specs/SAMv1.pdf
package bgzf

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	// DefaultBlockSize is the default uncompressed block size. It matches
	// the value used by samtools and biogo.
	DefaultBlockSize = 0x0ff00

	// MaxBlockSize is the largest legal uncompressed block size.
	MaxBlockSize = 0x10000

	// maxCompressedBlockSize bounds the compressed size of a block. The
	// BSIZE field is 16 bits wide.
	maxCompressedBlockSize = 0x10000
)

var (
	// bgzfExtra is the Extra subfield template: subfield id "BC", length
	// 2, BSIZE placeholder. BSIZE is patched after compression.
	bgzfExtra       = []byte{66, 67, 2, 0, 0, 0}
	bgzfExtraPrefix = bgzfExtra[:4]

	// terminator is the empty-payload block that ends a valid .bgzf file.
	terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// extraOffset is the byte offset of the Extra subfield within an emitted
// gzip block: the 10 byte fixed header followed by the 2 byte XLEN field.
const extraOffset = 12

// Writer compresses its input into .bgzf format. Close writes the
// terminator; CloseWithoutTerminator flushes the current block without
// one, so that multiple writers' outputs can be concatenated into a
// single valid file with a terminator only at the end.
type Writer struct {
	w          io.Writer
	z          *gzip.Writer
	level      int
	blockSize  int
	pending    bytes.Buffer // uncompressed bytes not yet forming a full block
	compressed bytes.Buffer
	coffset    uint64 // file offset of the current block
}

// NewWriter returns a Writer emitting blocks of DefaultBlockSize
// uncompressed bytes, compressed at the given gzip level.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	return NewWriterBlockSize(w, level, DefaultBlockSize)
}

// NewWriterBlockSize is NewWriter with an explicit uncompressed block
// size, at most MaxBlockSize.
func NewWriterBlockSize(w io.Writer, level, blockSize int) (*Writer, error) {
	if blockSize <= 0 || blockSize > MaxBlockSize {
		return nil, errors.Errorf("bgzf: invalid block size %d", blockSize)
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, errors.Errorf("bgzf: invalid compression level %d", level)
	}
	return &Writer{w: w, level: level, blockSize: blockSize}, nil
}

// Write appends buf to the .bgzf payload, emitting a compressed block
// whenever a full block of uncompressed bytes has accumulated.
func (w *Writer) Write(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		end := len(buf)
		if limit := i + w.blockSize - w.pending.Len(); limit < end {
			end = limit
		}
		n, _ := w.pending.Write(buf[i:end])
		i += n
		if err := w.compressPending(false); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// CloseWithoutTerminator flushes the remaining bytes as a final block but
// does not append the terminator. The output is not a complete .bgzf
// file on its own.
func (w *Writer) CloseWithoutTerminator() error {
	return w.compressPending(true)
}

// Close flushes the remaining bytes and appends the .bgzf terminator.
// It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.CloseWithoutTerminator(); err != nil {
		return err
	}
	_, err := w.w.Write(terminator)
	return err
}

// VOffset returns the virtual offset of the next byte to be written: the
// file offset of the current block in the upper 48 bits and the offset
// within the uncompressed block in the lower 16.
func (w *Writer) VOffset() uint64 {
	return w.coffset<<16 | uint64(w.pending.Len())
}

// compressPending emits compressed blocks while a full block of pending
// bytes is available, plus a final short block when flush is set.
func (w *Writer) compressPending(flush bool) error {
	for w.pending.Len() >= w.blockSize || (flush && w.pending.Len() > 0) {
		w.compressed.Reset()
		if w.z == nil {
			z, err := gzip.NewWriterLevel(&w.compressed, w.level)
			if err != nil {
				return err
			}
			w.z = z
		} else {
			w.z.Reset(&w.compressed)
		}
		// Reset clears the header, so the Extra subfield is set per block.
		w.z.Header.Extra = append([]byte(nil), bgzfExtra...)
		w.z.Header.OS = 0xff

		if _, err := w.z.Write(w.pending.Next(w.blockSize)); err != nil {
			return err
		}
		if err := w.z.Close(); err != nil {
			return err
		}

		b := w.compressed.Bytes()
		bsize := len(b) - 1
		if bsize >= maxCompressedBlockSize {
			return errors.Errorf("bgzf: compressed block is too big: %d >= %d",
				bsize, maxCompressedBlockSize)
		}
		if len(b) < extraOffset+len(bgzfExtra) ||
			!bytes.Equal(b[extraOffset:extraOffset+len(bgzfExtraPrefix)], bgzfExtraPrefix) {
			return errors.New("bgzf: gzip block is missing the BSIZE subfield")
		}
		b[extraOffset+4] = byte(bsize)
		b[extraOffset+5] = byte(bsize >> 8)

		sz := len(b)
		if _, err := w.compressed.WriteTo(w.w); err != nil {
			return err
		}
		w.coffset += uint64(sz)
	}
	return nil
}
