package midi

import (
	"sort"
	"strings"
)

// NoTime marks an item that does not change any time-scoped attribute.
const NoTime int64 = -1

const lineSeparator = "\n"

/*
A Set is an ordered, append-only sequence of Items. Alongside the items it keeps
a parallel time index: one marker per item, either the cumulative tick at which
the item changes a time-scoped attribute or NoTime. The hex and comment text of
every item is aggregated as it is appended, one line per item.

The zero value is an empty Set ready to use. A Set must not be appended to from
more than one goroutine; once fully built it is safe for concurrent readers.
*/
type Set struct {
	items   []*Item
	markers []int64
	hex     strings.Builder
	comment strings.Builder
	// positions of marked items per attribute, in append order
	attrs  map[Attribute][]int
	last   int64
	marked bool
}

/*
Append adds item to the end of the set with the given time marker. Non-sentinel
markers must not decrease across appends; a marker earlier than the previous one
is rejected with ErrTimeOrder and any other negative marker with ErrMarkerRange.
A rejected item leaves the set unchanged.
*/
func (s *Set) Append(item *Item, marker int64) error {
	if marker < NoTime {
		return ErrMarkerRange
	}
	if marker != NoTime && s.marked && marker < s.last {
		return ErrTimeOrder
	}
	if marker != NoTime {
		if attr, ok := item.attribute(); ok {
			if s.attrs == nil {
				s.attrs = make(map[Attribute][]int)
			}
			s.attrs[attr] = append(s.attrs[attr], len(s.items))
		}
		s.last = marker
		s.marked = true
	}
	s.items = append(s.items, item)
	s.markers = append(s.markers, marker)
	s.hex.WriteString(item.Hex())
	s.hex.WriteString(lineSeparator)
	s.comment.WriteString(item.Comment())
	s.comment.WriteString(lineSeparator)
	return nil
}

// Len returns the number of items in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// ItemAt returns the item at position i.
func (s *Set) ItemAt(i int) (*Item, error) {
	if i < 0 || i >= len(s.items) {
		return nil, indexError(i, len(s.items))
	}
	return s.items[i], nil
}

// Marker returns the time index entry of the item at position i.
func (s *Set) Marker(i int) (int64, error) {
	if i < 0 || i >= len(s.markers) {
		return NoTime, indexError(i, len(s.markers))
	}
	return s.markers[i], nil
}

// Hex returns every item's hex text, each followed by a newline.
func (s *Set) Hex() string {
	return s.hex.String()
}

// Comment returns every item's comment, each followed by a newline.
func (s *Set) Comment() string {
	return s.comment.String()
}

// Bytes returns the concatenated payload of every item.
func (s *Set) Bytes() []byte {
	var out []byte
	for _, item := range s.items {
		out = append(out, item.data...)
	}
	return out
}

// size is the total payload length of the set's items.
func (s *Set) size() int {
	n := 0
	for _, item := range s.items {
		n += len(item.data)
	}
	return n
}

/*
ResolveAttributeAt finds the last item that sets attr at or before tick and
returns its event. A false result means no such item exists in this set and the
caller should consult an enclosing scope.
*/
func (s *Set) ResolveAttributeAt(attr Attribute, tick int64) (*Event, bool) {
	positions := s.attrs[attr]
	// first position whose marker is beyond tick
	n := sort.Search(len(positions), func(i int) bool {
		return s.markers[positions[i]] > tick
	})
	if n == 0 {
		return nil, false
	}
	return s.items[positions[n-1]].event, true
}
