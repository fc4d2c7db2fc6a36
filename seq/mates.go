package seq

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// mateSuffix marks the digits that sequencers and conversion tools append
// to distinguish mates ("/1", ".2", bare "3", ...). The set is exactly
// '1', '2', '3'; downstream pipelines depend on this not changing.
var mateSuffix = [256]bool{'1': true, '2': true, '3': true}

func recordID(name string) string {
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		return name[:i]
	}
	return name
}

// NamesMatch reports whether two record names identify the reads of one
// pair. Each name is cut at its first run of whitespace to obtain the ID.
// If both IDs end in a mate-number digit, that one trailing digit is
// stripped from both before comparing; otherwise the IDs are compared
// unmodified.
func NamesMatch(name1, name2 string) bool {
	id1 := recordID(name1)
	id2 := recordID(name2)
	if len(id1) > 0 && len(id2) > 0 &&
		mateSuffix[id1[len(id1)-1]] && mateSuffix[id2[len(id2)-1]] {
		id1 = id1[:len(id1)-1]
		id2 = id2[:len(id2)-1]
	}
	return id1 == id2
}

// RecordsAreMates reports whether all given records belong to one read
// pair (or triplet etc.), comparing every record's ID against the first
// under the NamesMatch rule. It is an error to call it with fewer than two
// records.
func RecordsAreMates(records ...*Record) (bool, error) {
	if len(records) < 2 {
		return false, errors.New("RecordsAreMates requires at least two records")
	}
	first := records[0]
	for _, r := range records[1:] {
		if !NamesMatch(first.name, r.name) {
			return false, nil
		}
	}
	return true, nil
}
