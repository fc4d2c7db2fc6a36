package seq_test

import (
	"testing"

	"github.com/grailbio/seqio/seq"
	"github.com/grailbio/testutil/expect"
)

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		name1, name2 string
		want         bool
	}{
		{"abc/1", "abc/2", true},
		{"abc.1 x", "abc.3 y", true},
		{"abc1", "abc2", true},
		{"abc1", "abc4", false},
		{"abc", "abc1", false},
		{"abc", "abc", true},
		{"abc def", "abc ghi", true},
		{"abc", "abd", false},
		{"", "", true},
		{"1", "2", true},
	}
	for _, tt := range tests {
		expect.EQ(t, seq.NamesMatch(tt.name1, tt.name2), tt.want,
			"NamesMatch(%q, %q)", tt.name1, tt.name2)
	}
}

func mustRecord(t *testing.T, name string) *seq.Record {
	t.Helper()
	r, err := seq.NewRecord(name, "ACGT")
	expect.NoError(t, err)
	return r
}

func TestRecordsAreMates(t *testing.T) {
	r1 := mustRecord(t, "abc/1 x")
	r2 := mustRecord(t, "abc/2 y")
	r3 := mustRecord(t, "abc/3")
	other := mustRecord(t, "def/1")

	ok, err := seq.RecordsAreMates(r1, r2)
	expect.NoError(t, err)
	expect.True(t, ok)

	ok, err = seq.RecordsAreMates(r1, r2, r3)
	expect.NoError(t, err)
	expect.True(t, ok)

	ok, err = seq.RecordsAreMates(r1, r2, other)
	expect.NoError(t, err)
	expect.False(t, ok)

	if _, err = seq.RecordsAreMates(); err == nil {
		t.Error("RecordsAreMates() with no records: expected an error")
	}
	if _, err = seq.RecordsAreMates(r1); err == nil {
		t.Error("RecordsAreMates() with one record: expected an error")
	}
}

func TestIsMate(t *testing.T) {
	r1 := mustRecord(t, "abc/1")
	r2 := mustRecord(t, "abc/2")
	expect.True(t, r1.IsMate(r2))
	expect.False(t, r1.IsMate(mustRecord(t, "abd/2")))
}
