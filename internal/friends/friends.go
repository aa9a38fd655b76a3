// Package friends implements the string encoding of a user's friend list as
// stored in the Friends property: pairs joined by '|', country and name
// joined by ';'. Example: "USA;DJKhaled|Canada;Ted".
package friends

import "strings"

const (
	pairSep  = "|"
	fieldSep = ";"
)

// Friend identifies one friend by the (partition, row) of their data entity.
type Friend struct {
	Country string
	Name    string
}

// List is an ordered, duplicate-free sequence of friends. The zero value is
// an empty list.
type List struct {
	entries []Friend
}

// Parse decodes a serialized friend list. Malformed fragments (missing
// separator, empty country or name) are dropped; duplicates keep their first
// position. Parse and String round-trip exactly for any list produced by
// this package.
func Parse(s string) List {
	var l List
	if s == "" {
		return l
	}
	for _, pair := range strings.Split(s, pairSep) {
		country, name, ok := strings.Cut(pair, fieldSep)
		if !ok || country == "" || name == "" {
			continue
		}
		l.Add(Friend{Country: country, Name: name})
	}
	return l
}

// String encodes the list. An empty list encodes as "".
func (l *List) String() string {
	pairs := make([]string, 0, len(l.entries))
	for _, f := range l.entries {
		pairs = append(pairs, f.Country+fieldSep+f.Name)
	}
	return strings.Join(pairs, pairSep)
}

// Contains reports whether f is in the list.
func (l *List) Contains(f Friend) bool {
	for _, e := range l.entries {
		if e == f {
			return true
		}
	}
	return false
}

// Add appends f preserving insertion order. Adding an existing friend is a
// no-op; it reports whether the list changed.
func (l *List) Add(f Friend) bool {
	if l.Contains(f) {
		return false
	}
	l.entries = append(l.entries, f)
	return true
}

// Remove deletes f, reporting whether the list changed. Removing an absent
// friend is a no-op.
func (l *List) Remove(f Friend) bool {
	for i, e := range l.entries {
		if e == f {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the friends in insertion order. The returned slice must not be
// mutated.
func (l *List) All() []Friend {
	return l.entries
}

// Len returns the number of friends.
func (l *List) Len() int {
	return len(l.entries)
}
