package midi

import "fmt"

/*
A Describer renders the human-readable comment for an item's payload. Chunk
parsers choose the Describer that matches what the bytes are (a chunk header, a
header field, an event) and the Item calls it exactly once.
*/
type Describer interface {
	Describe(data []byte) string
}

// DescriberFunc adapts a plain function to the Describer interface.
type DescriberFunc func(data []byte) string

func (f DescriberFunc) Describe(data []byte) string {
	return f(data)
}

// An Item is a contiguous run of bytes with its derived hex and comment text.
type Item struct {
	offset  int
	data    []byte
	hex     string
	comment string
	event   *Event
}

// NewItem copies buf[start:start+length] and renders it. d may be nil, in which
// case the comment is empty.
func NewItem(buf []byte, start, length int, d Describer) (*Item, error) {
	if start < 0 || length < 0 || start > len(buf) || length > len(buf)-start {
		remain := len(buf) - start
		if remain < 0 {
			remain = 0
		}
		return nil, formatError("", start, TruncatedError, length, start, remain)
	}
	data := make([]byte, length)
	copy(data, buf[start:start+length])
	item := &Item{
		offset: start,
		data:   data,
		hex:    hexString(data),
	}
	if d != nil {
		item.comment = d.Describe(data)
	}
	return item, nil
}

func newEventItem(buf []byte, start, length int, ev *Event) (*Item, error) {
	item, err := NewItem(buf, start, length, ev)
	if err != nil {
		return nil, err
	}
	item.event = ev
	return item, nil
}

// hexString renders data as upper-case byte pairs separated by single spaces.
func hexString(data []byte) string {
	return fmt.Sprintf("% X", data)
}

func (i *Item) Offset() int     { return i.offset }
func (i *Item) Len() int        { return len(i.data) }
func (i *Item) Hex() string     { return i.hex }
func (i *Item) Comment() string { return i.comment }

// Bytes returns a copy of the item's payload.
func (i *Item) Bytes() []byte {
	return append([]byte(nil), i.data...)
}

// Event returns the decoded track event, or nil for framing and header items.
func (i *Item) Event() *Event {
	return i.event
}
