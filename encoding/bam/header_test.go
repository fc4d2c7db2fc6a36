package bam_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"

	"github.com/grailbio/seqio/encoding/bam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStream assembles a BAM stream: magic, header text, references,
// then the given record bodies, each framed by its length.
func buildStream(headerText string, refNames []string, records ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(bam.Magic)
	writeUint32(&buf, uint32(len(headerText)))
	buf.WriteString(headerText)
	writeUint32(&buf, uint32(len(refNames)))
	for _, name := range refNames {
		writeUint32(&buf, uint32(len(name)+1))
		buf.WriteString(name)
		buf.WriteByte(0) // NUL-terminated name
		writeUint32(&buf, 10000)
	}
	for _, rec := range records {
		writeUint32(&buf, uint32(len(rec)))
		buf.Write(rec)
	}
	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func TestReadHeader(t *testing.T) {
	headerText := "@HD\tVN:1.6\tSO:coordinate\n"
	record := []byte("fake record body")
	stream := buildStream(headerText, []string{"chr1", "chr2"}, record)

	r := bytes.NewReader(stream)
	header, err := bam.ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, headerText, string(header))

	// The stream is now positioned exactly at the first record.
	var lenBuf [4]byte
	_, err = r.Read(lenBuf[:])
	require.NoError(t, err)
	assert.Equal(t, uint32(len(record)), binary.LittleEndian.Uint32(lenBuf[:]))
}

func TestReadHeaderNoReferences(t *testing.T) {
	stream := buildStream("hdr", nil)
	header, err := bam.ReadHeader(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, "hdr", string(header))
}

func TestReadHeaderWrongMagic(t *testing.T) {
	_, err := bam.ReadHeader(bytes.NewReader([]byte(">seq1\nACGT\n")))
	require.Error(t, err)
	assert.NotEqual(t, bam.ErrTruncated, errors.Cause(err))
	assert.Contains(t, err.Error(), "magic")
}

func TestReadHeaderTruncated(t *testing.T) {
	full := buildStream("@HD\tVN:1.6\n", []string{"chr1"})
	// Every proper prefix of the header structure must fail with the
	// truncation error, not the wrong-magic error.
	for n := 0; n < len(full); n++ {
		_, err := bam.ReadHeader(bytes.NewReader(full[:n]))
		require.Error(t, err, "prefix of length %d", n)
		if n >= 4 {
			assert.Equal(t, bam.ErrTruncated, errors.Cause(err), "prefix of length %d", n)
		}
	}
}

func TestReadHeaderAfterMagic(t *testing.T) {
	stream := buildStream("text", []string{"ref"})
	header, err := bam.ReadHeaderAfterMagic(bytes.NewReader(stream[4:]))
	require.NoError(t, err)
	assert.Equal(t, "text", string(header))
}

func TestHead(t *testing.T) {
	rec1 := []byte("0123456789") // framed length 14
	rec2 := []byte("abcdef")     // framed length 10
	// buildStream with an empty header and no refs emits magic(4) +
	// l_text(4) + n_ref(4) before the records; skip that preamble.
	stream := buildStream("", nil, rec1, rec2)[12:]

	tests := []struct {
		end  int
		want int
	}{
		{0, 0},
		{3, 0},               // not even one length field
		{4, 0},               // length but no body
		{13, 0},              // one byte short of rec1
		{14, 14},             // exactly rec1
		{20, 14},             // rec2 incomplete
		{24, 24},             // both records
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bam.Head(stream, tt.end), "end %d", tt.end)
	}
}

func TestHeadHugeBlockSize(t *testing.T) {
	// A length field above 2^31 must scan as an incomplete record, not
	// wrap around on 32-bit int platforms.
	stream := []byte{0xff, 0xff, 0xff, 0xff, 'x', 'y', 'z'}
	assert.Equal(t, 0, bam.Head(stream, len(stream)))
}

func TestHeadEmptyRecord(t *testing.T) {
	// A zero-length record frame still advances the scan.
	stream := []byte{0, 0, 0, 0, 3, 0, 0, 0, 'x', 'y', 'z'}
	assert.Equal(t, 11, bam.Head(stream, len(stream)))
	assert.Equal(t, 4, bam.Head(stream, 10))
}
