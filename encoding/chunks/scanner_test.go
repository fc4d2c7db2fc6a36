package chunks_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/seqio/encoding/bam"
	"github.com/grailbio/seqio/encoding/chunks"
	"github.com/grailbio/seqio/seq"
)

func fastqData(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		bases := strings.Repeat("ACGT", i%3+1)
		fmt.Fprintf(&b, "@read%d\n%s\n+\n%s\n", i, bases, strings.Repeat("I", len(bases)))
	}
	return b.String()
}

func fastaData(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ">read%d desc\n%s\n", i, strings.Repeat("ACGT", i%3+1))
	}
	return b.String()
}

// collect drains the scanner, copying each chunk before the next Scan
// invalidates it.
func collect(t *testing.T, s *chunks.Scanner) [][]byte {
	t.Helper()
	var got [][]byte
	for s.Scan() {
		chunk := s.Chunk()
		expect.True(t, len(chunk) > 0, "scanners must not yield empty chunks")
		got = append(got, append([]byte(nil), chunk...))
	}
	return got
}

func TestScannerFastq(t *testing.T) {
	data := fastqData(20)
	s := chunks.NewScanner(strings.NewReader(data), 64)
	got := collect(t, s)
	expect.NoError(t, s.Err())
	expect.True(t, len(got) > 1, "buffer size 64 must force multiple chunks")
	for i, chunk := range got {
		expect.EQ(t, chunk[0], byte('@'))
		if i < len(got)-1 {
			expect.EQ(t, bytes.Count(chunk, []byte{'\n'})%8, 0)
		}
	}
	expect.EQ(t, string(bytes.Join(got, nil)), data)
	expect.EQ(t, s.Header(), []byte(nil))
}

func TestScannerFasta(t *testing.T) {
	data := fastaData(12)
	s := chunks.NewScanner(strings.NewReader(data), 64)
	got := collect(t, s)
	expect.NoError(t, s.Err())
	expect.True(t, len(got) > 1, "buffer size 64 must force multiple chunks")
	for _, chunk := range got {
		expect.EQ(t, chunk[0], byte('>'))
	}
	expect.EQ(t, string(bytes.Join(got, nil)), data)
}

func TestScannerFastaSingleRecord(t *testing.T) {
	// A single record has no boundary; it is flushed at end of input.
	data := ">r1\nACGTACGT\n"
	s := chunks.NewScanner(strings.NewReader(data), 64)
	got := collect(t, s)
	expect.NoError(t, s.Err())
	expect.EQ(t, len(got), 1)
	expect.EQ(t, string(got[0]), data)
}

func TestScannerEmptyInput(t *testing.T) {
	s := chunks.NewScanner(strings.NewReader(""), 64)
	expect.False(t, s.Scan())
	expect.NoError(t, s.Err())
}

func TestScannerUnknownFormat(t *testing.T) {
	s := chunks.NewScanner(strings.NewReader("FOO\nBAR\n"), 64)
	expect.False(t, s.Scan())
	expect.True(t, errors.Cause(s.Err()) == chunks.ErrUnknownFormat, "got %v", s.Err())
}

func TestScannerRecordTooLong(t *testing.T) {
	data := ">r1\n" + strings.Repeat("ACGT", 100) + "\n>r2\nA\n"
	s := chunks.NewScanner(strings.NewReader(data), 32)
	expect.False(t, s.Scan())
	expect.True(t, errors.Cause(s.Err()) == seq.ErrRecordTooLong, "got %v", s.Err())
}

func bamStream(text string, records ...[]byte) []byte {
	var b bytes.Buffer
	b.Write(bam.Magic)
	binary.Write(&b, binary.LittleEndian, uint32(len(text)))
	b.WriteString(text)
	binary.Write(&b, binary.LittleEndian, uint32(1))
	name := []byte("chr1\x00")
	binary.Write(&b, binary.LittleEndian, uint32(len(name)))
	b.Write(name)
	binary.Write(&b, binary.LittleEndian, uint32(248956422))
	for _, rec := range records {
		binary.Write(&b, binary.LittleEndian, uint32(len(rec)))
		b.Write(rec)
	}
	return b.Bytes()
}

func TestScannerBAM(t *testing.T) {
	const text = "@HD\tVN:1.6\n"
	rec1 := bytes.Repeat([]byte{0xca}, 6)
	rec2 := bytes.Repeat([]byte{0xfe}, 10)
	rec3 := bytes.Repeat([]byte{0x01}, 3)
	data := bamStream(text, rec1, rec2, rec3)
	s := chunks.NewScanner(bytes.NewReader(data), 16)
	got := collect(t, s)
	expect.NoError(t, s.Err())
	expect.EQ(t, string(s.Header()), text)

	// Rebuild the record region and check that every chunk holds whole
	// length-prefixed records.
	var want bytes.Buffer
	for _, rec := range [][]byte{rec1, rec2, rec3} {
		binary.Write(&want, binary.LittleEndian, uint32(len(rec)))
		want.Write(rec)
	}
	expect.EQ(t, bytes.Join(got, nil), want.Bytes())
	for _, chunk := range got {
		for pos := 0; pos < len(chunk); {
			size := int(binary.LittleEndian.Uint32(chunk[pos:]))
			pos += 4 + size
			expect.True(t, pos <= len(chunk), "record crosses a chunk boundary")
		}
	}
}
