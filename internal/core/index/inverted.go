package index

import (
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeKey canonicalises a filterable field value for indexing and
// lookup: trim, collapse inner whitespace, spaces to underscores,
// lowercase. Both sides of every exact-match comparison go through
// this, so " Jane  Doe " and "jane_doe" land on the same posting set.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ToLower(s)
}

// fieldIndex is an inverted index for one filterable field: normalised
// value to the set of surrogate ids carrying that value. Append-only,
// matching the engine's append-only discipline. Like documentStore it
// is only touched under the owning Index's mutex.
type fieldIndex struct {
	postings map[string]map[int64]struct{}
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{postings: make(map[string]map[int64]struct{})}
}

// add inserts vectorID into the set for value, creating the set if
// absent. Amortised O(1).
func (f *fieldIndex) add(value string, vectorID int64) {
	key := NormalizeKey(value)
	set, ok := f.postings[key]
	if !ok {
		set = make(map[int64]struct{})
		f.postings[key] = set
	}
	set[vectorID] = struct{}{}
}

// lookup returns the posting set for value. Unknown values yield an
// empty set, never an error. The returned set aliases internal state
// and must only be read under the owning Index's lock.
func (f *fieldIndex) lookup(value string) map[int64]struct{} {
	return f.postings[NormalizeKey(value)]
}
