package crate

import (
	"sort"
	"strings"
)

// Separator divides the fields of a raw package reference as emitted by
// cargo metadata: "name version (source)".
const Separator = " "

// ID is the canonical identity of a crate: the bare name, with version and
// source stripped. References to the same crate compare equal as IDs no
// matter how the resolve document spelled them.
type ID string

// Parse derives the canonical identity from a raw reference by taking the
// leading separator-delimited token. Surrounding whitespace is ignored.
// Parse never fails; whether the crate exists is the graph's question,
// not the parser's.
func Parse(raw string) ID {
	name, _, _ := strings.Cut(strings.TrimSpace(raw), Separator)
	return ID(name)
}

// KeyPrefix returns the raw-id prefix that matches this crate and no
// other: name plus separator, so "foo" can never match "foobar 1.0".
func (id ID) KeyPrefix() string {
	return string(id) + Separator
}

func (id ID) String() string {
	return string(id)
}

// Set is an unordered collection of crate identities.
type Set map[ID]struct{}

// NewSet builds a Set from raw references, normalizing each through Parse.
// Stray version suffixes or trailing separators in the input are harmless.
func NewSet(raws ...string) Set {
	s := make(Set, len(raws))
	for _, raw := range raws {
		s.Add(Parse(raw))
	}
	return s
}

func (s Set) Add(id ID) {
	s[id] = struct{}{}
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order by name.
func (s Set) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// SortIDs orders identities ascending by name, in place.
func SortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
