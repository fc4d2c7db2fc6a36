package seq

import (
	"github.com/grailbio/base/simd"
)

// complementTable maps each ASCII byte to its nucleotide complement:
// A<->T, C<->G, U->A and the IUPAC ambiguity pairs R<->Y, K<->M, B<->V,
// D<->H, with case preserved. S, W, N and every other byte map to
// themselves. The table is immutable after initialization and shared
// process-wide.
var complementTable = makeComplementTable()

func makeComplementTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := [...][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'R', 'Y'}, {'K', 'M'}, {'B', 'V'}, {'D', 'H'},
	}
	lower := byte('a' - 'A')
	for _, p := range pairs {
		a, b := p[0], p[1]
		t[a], t[b] = b, a
		t[a+lower], t[b+lower] = b+lower, a+lower
	}
	t['U'], t['u'] = 'A', 'a'
	return t
}

// ReverseComplement returns a new record whose sequence is reversed and
// complemented and whose qualities, when present, are reversed unchanged.
// The name is carried over as is.
func (r *Record) ReverseComplement() *Record {
	n := len(r.sequence)
	sequence := make([]byte, n)
	for i, j := 0, n-1; j >= 0; i, j = i+1, j-1 {
		sequence[i] = complementTable[r.sequence[j]]
	}
	rc := &Record{name: r.name, sequence: string(sequence)}
	if r.hasQuals {
		qualities := make([]byte, len(r.qualities))
		simd.Reverse8(qualities, []byte(r.qualities))
		rc.qualities = string(qualities)
		rc.hasQuals = true
	}
	return rc
}
