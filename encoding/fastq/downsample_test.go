package fastq_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/seqio/encoding/fastq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairedInput(n int) (string, string) {
	var b1, b2 strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b1, "@read%d/1\nACGT\n+\nHHHH\n", i)
		fmt.Fprintf(&b2, "@read%d/2\nTTTT\n+\nIIII\n", i)
	}
	return b1.String(), b2.String()
}

func TestDownsampleAll(t *testing.T) {
	in1, in2 := pairedInput(10)
	var out1, out2 bytes.Buffer
	require.NoError(t, fastq.Downsample(1.0, strings.NewReader(in1), strings.NewReader(in2), &out1, &out2))
	assert.Equal(t, in1, out1.String())
	assert.Equal(t, in2, out2.String())
}

func TestDownsampleNone(t *testing.T) {
	in1, in2 := pairedInput(10)
	var out1, out2 bytes.Buffer
	require.NoError(t, fastq.Downsample(0.0, strings.NewReader(in1), strings.NewReader(in2), &out1, &out2))
	assert.Equal(t, 0, out1.Len())
	assert.Equal(t, 0, out2.Len())
}

func TestDownsamplePartial(t *testing.T) {
	in1, in2 := pairedInput(100)
	var out1, out2 bytes.Buffer
	require.NoError(t, fastq.Downsample(0.5, strings.NewReader(in1), strings.NewReader(in2), &out1, &out2))
	// Output stays pairwise in sync.
	assert.Equal(t, strings.Count(out1.String(), "\n"), strings.Count(out2.String(), "\n"))
	assert.True(t, out1.Len() > 0 && out1.Len() < len(in1))
}

func TestDownsampleBadRate(t *testing.T) {
	require.Error(t, fastq.Downsample(1.5, nil, nil, nil, nil))
}

func TestDownsampleDiscordant(t *testing.T) {
	in1, _ := pairedInput(3)
	in2, _ := pairedInput(1)
	var out1, out2 bytes.Buffer
	err := fastq.Downsample(1.0, strings.NewReader(in1), strings.NewReader(in2), &out1, &out2)
	require.Error(t, err)
}
