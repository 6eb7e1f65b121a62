package midi

import (
	"encoding/binary"
	"fmt"
)

/*
Chunks are the basic building block of Midi files. All Chunks contain a 4
character type and a 32-bit length which is the number of bytes contained in the
data of the chunk. The data always immediately follows the chunk. e.g.

	<Chunk<type><length>><data of length><Chunk<type><length>><data of length>

A Chunk is a Set whose first item is the 8-byte type/length framing and whose
remaining items are the parsed body. The owning File is held only to answer
attribute queries that the chunk cannot answer itself.
*/
type Chunk struct {
	Set
	Type   [4]byte
	Length uint32
	Offset int

	kind   ChunkKind
	header *Header
	owner  *File
}

/*
NewChunk builds a generic chunk whose body is kept as one opaque item. The
header and track tags are reserved for their own parsers; passing either of them
here is a FormatError regardless of the body.
*/
func NewChunk(owner *File, typ [4]byte, length uint32, buf []byte, index int) (*Chunk, error) {
	if k := kindOf(typ); k != KindGeneric {
		return nil, formatError(string(typ[:]), index, ReservedTagError, string(typ[:]), k)
	}
	return ParseChunk(owner, typ, length, buf, index)
}

/*
ParseChunk builds the chunk that starts at buf[index] with the given type and
declared length, routing the body to the header, track or generic parser by
tag. The 8 framing bytes at buf[index:] must match typ and length.
*/
func ParseChunk(owner *File, typ [4]byte, length uint32, buf []byte, index int) (*Chunk, error) {
	tag := string(typ[:])
	if index < 0 || index > len(buf) || len(buf)-index < chunkHeaderSize {
		remain := len(buf) - index
		if remain < 0 {
			remain = 0
		}
		return nil, formatError(tag, index, TruncatedError, chunkHeaderSize, index, remain)
	}
	if string(buf[index:index+4]) != tag || binary.BigEndian.Uint32(buf[index+4:]) != length {
		return nil, formatError(tag, index, TagMismatchError, buf[index:index+chunkHeaderSize])
	}
	bodyStart := index + chunkHeaderSize
	if remain := len(buf) - bodyStart; uint64(length) > uint64(remain) {
		return nil, formatError(tag, index, ChunkOverrunError, length, remain)
	}

	c := &Chunk{
		Type:   typ,
		Length: length,
		Offset: index,
		kind:   kindOf(typ),
		owner:  owner,
	}
	framing, err := NewItem(buf, index, chunkHeaderSize, DescriberFunc(func([]byte) string {
		return fmt.Sprintf("%s chunk, %d bytes", tag, length)
	}))
	if err != nil {
		return nil, err
	}
	if err := c.Append(framing, NoTime); err != nil {
		return nil, err
	}

	end := bodyStart + int(length)
	switch c.kind {
	case KindHeader:
		err = c.parseHeader(buf, bodyStart, end)
	case KindTrack:
		err = c.parseTrack(buf, bodyStart, end, owner.logger())
	default:
		err = c.appendOpaque(buf, bodyStart, end, fmt.Sprintf("%d bytes of %s data", length, tag))
	}
	if err != nil {
		return nil, err
	}
	if consumed := c.size(); consumed != chunkHeaderSize+int(length) {
		return nil, formatError(tag, index, FramingError, length, consumed-chunkHeaderSize)
	}
	return c, nil
}

func (c *Chunk) appendOpaque(buf []byte, start, end int, comment string) error {
	item, err := NewItem(buf, start, end-start, DescriberFunc(func([]byte) string {
		return comment
	}))
	if err != nil {
		return err
	}
	return c.Append(item, NoTime)
}

func (c *Chunk) parseHeader(buf []byte, start, end int) error {
	if end-start < headerBodySize {
		return formatError(c.Tag(), c.Offset, HeaderSizeError, c.Length)
	}
	word := func(i int) uint16 {
		return binary.BigEndian.Uint16(buf[start+2*i:])
	}
	h := &Header{Format: word(0), Ntrks: word(1), Division: Division(word(2))}
	fields := []string{
		fmt.Sprintf("Format %d", h.Format),
		fmt.Sprintf("%d tracks", h.Ntrks),
		fmt.Sprintf("Division: %s", h.Division),
	}
	for i, comment := range fields {
		if err := c.appendOpaque(buf, start+2*i, start+2*i+2, comment); err != nil {
			return err
		}
	}
	if extra := end - start - headerBodySize; extra > 0 {
		err := c.appendOpaque(buf, start+headerBodySize, end,
			fmt.Sprintf("%d bytes of extra header data", extra))
		if err != nil {
			return err
		}
	}
	c.header = h
	return nil
}

func (c *Chunk) Tag() string {
	return string(c.Type[:])
}

func (c *Chunk) Kind() ChunkKind {
	return c.kind
}

// Header returns the decoded MThd fields, or nil for other chunks.
func (c *Chunk) Header() *Header {
	return c.header
}

/*
Attribute resolves attr at tick against this chunk's own events first. When the
chunk has no event setting attr at or before tick, the owning file answers.
*/
func (c *Chunk) Attribute(attr Attribute, tick int64) (*Event, bool) {
	if ev, ok := c.ResolveAttributeAt(attr, tick); ok {
		return ev, true
	}
	if c.owner == nil {
		return nil, false
	}
	return c.owner.Attribute(attr, tick)
}

// KeySignature returns false when neither the chunk nor the file sets one at
// or before tick; callers then use DefaultKeySignature.
func (c *Chunk) KeySignature(tick int64) (KeySignature, bool) {
	return keySignatureOf(c, tick)
}

func (c *Chunk) Tempo(tick int64) (Tempo, bool) {
	return tempoOf(c, tick)
}

func (c *Chunk) TimeSignature(tick int64) (TimeSignature, bool) {
	return timeSignatureOf(c, tick)
}

type resolver interface {
	Attribute(attr Attribute, tick int64) (*Event, bool)
}

func keySignatureOf(r resolver, tick int64) (KeySignature, bool) {
	ev, ok := r.Attribute(AttrKeySignature, tick)
	if !ok {
		return KeySignature{}, false
	}
	return ev.KeySignature()
}

func tempoOf(r resolver, tick int64) (Tempo, bool) {
	ev, ok := r.Attribute(AttrTempo, tick)
	if !ok {
		return 0, false
	}
	return ev.Tempo()
}

func timeSignatureOf(r resolver, tick int64) (TimeSignature, bool) {
	ev, ok := r.Attribute(AttrTimeSignature, tick)
	if !ok {
		return TimeSignature{}, false
	}
	return ev.TimeSignature()
}
