package fastq

import (
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

// Downsample copies read pairs from r1In and r2In to r1Out and r2Out,
// randomly keeping pairs at the given sampling rate. Pairing is verified
// while reading, so discordant inputs fail rather than silently
// desynchronize.
func Downsample(rate float64, r1In, r2In io.Reader, r1Out, r2Out io.Writer) error {
	if rate < 0.0 || rate > 1.0 {
		return errors.New("rate must be between 0 and 1 (inclusive)")
	}
	random := rand.New(rand.NewSource(0))
	reader := NewPairReader(r1In, r2In)
	writer := NewPairWriter(r1Out, r2Out, false)
	for reader.Scan() {
		if random.Float64() >= rate {
			continue
		}
		r1, r2 := reader.Records()
		if err := writer.Write(r1, r2); err != nil {
			return errors.Wrap(err, "error writing downsampled pair")
		}
	}
	return errors.Wrap(reader.Err(), "error reading paired input")
}
