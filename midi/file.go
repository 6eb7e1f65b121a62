package midi

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*
A File represents a MIDI file as defined by the MIDI file spec:
http://goo.gl/rlEN0H

It owns its chunks in file order, the header chunk first. Time-scoped
attributes recorded at file scope are the last fallback for every chunk.
*/
type File struct {
	chunks  []*Chunk
	globals Set
	tracks  int
	opts    *options
}

// New returns an empty file for building chunk by chunk with Append.
func New(opts ...Option) *File {
	return &File{opts: newOptions(opts)}
}

/*
Parse splits buf into chunks and parses each one. Any FormatError aborts the
whole parse; no partially built File is ever returned.
*/
func Parse(buf []byte, opts ...Option) (*File, error) {
	f := New(opts...)
	log := f.logger()
	for pos := 0; pos < len(buf); {
		if remain := len(buf) - pos; remain < chunkHeaderSize {
			return nil, formatError("", pos, TruncatedError, chunkHeaderSize, pos, remain)
		}
		var typ [4]byte
		copy(typ[:], buf[pos:])
		length := binary.BigEndian.Uint32(buf[pos+4:])
		if len(f.chunks) == 0 && typ != headerChunk {
			return nil, formatError(string(typ[:]), pos, FirstChunkError, string(typ[:]))
		}
		c, err := ParseChunk(f, typ, length, buf, pos)
		if err != nil {
			return nil, err
		}
		if err := f.Append(c); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"chunk":  c.Tag(),
			"offset": pos,
			"length": length,
			"items":  c.Len(),
		}).Debug("parsed chunk")
		pos += chunkHeaderSize + int(length)
	}
	if len(f.chunks) == 0 {
		return nil, formatError("", 0, EmptyFileError)
	}
	if h := f.Header(); int(h.Ntrks) != f.tracks {
		log.Warnf(TrackCountWarning, h.Ntrks, f.tracks)
	}
	return f, nil
}

/*
Append adds c as the file's next chunk. The first chunk must be the header chunk
and there may be only one. A chunk built with another file as owner is refused.
*/
func (f *File) Append(c *Chunk) error {
	if c.owner != nil && c.owner != f {
		return errors.New("midi: chunk belongs to another file")
	}
	switch {
	case len(f.chunks) == 0 && c.kind != KindHeader:
		return formatError(c.Tag(), c.Offset, FirstChunkError, c.Tag())
	case len(f.chunks) > 0 && c.kind == KindHeader:
		return formatError(c.Tag(), c.Offset, DuplicateHeaderErr)
	}
	switch c.kind {
	case KindGeneric:
		f.logger().Infof(UnknownChunkWarning, c.Tag(), c.Offset)
	case KindTrack:
		if f.tracks == 0 && f.opts != nil && f.opts.conductor && f.Header().Format == 1 {
			if err := f.promote(c); err != nil {
				return err
			}
		}
		f.tracks++
	}
	c.owner = f
	f.chunks = append(f.chunks, c)
	return nil
}

// promote records every time-scoped event of the conductor track at file scope.
func (f *File) promote(c *Chunk) error {
	for i, item := range c.items {
		if c.markers[i] == NoTime {
			continue
		}
		if err := f.globals.Append(item, c.markers[i]); err != nil {
			return err
		}
	}
	return nil
}

/*
SetGlobal records a time-scoped meta-event (FF <type> <length> <data>) at file
scope, effective from tick. Ticks must not go backward across calls.
*/
func (f *File) SetGlobal(tick int64, meta []byte) error {
	if tick < 0 {
		return formatError("", 0, NegativeTickError, tick)
	}
	if len(meta) < 2 || meta[0] != MetaEvent {
		var status byte
		if len(meta) > 0 {
			status = meta[0]
		}
		return formatError("", 0, NotMetaEventError, status)
	}
	scratch := &Chunk{Type: trackChunk}
	var running byte
	buf := append([]byte{0}, meta...)
	ev, next, err := scratch.readEvent(buf, 0, len(buf), &running)
	if err != nil {
		return err
	}
	if next != len(buf) {
		return formatError("", 0, FramingError, len(meta), next-1)
	}
	if _, ok := ev.attribute(); !ok {
		return formatError("", 0, AttributeMetaError, ev.MetaType)
	}
	ev.Tick = tick
	item, err := newEventItem(meta, 0, len(meta), ev)
	if err != nil {
		return err
	}
	if err := f.globals.Append(item, tick); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Attribute answers from file scope only; the file is the root of the cascade.
func (f *File) Attribute(attr Attribute, tick int64) (*Event, bool) {
	return f.globals.ResolveAttributeAt(attr, tick)
}

// KeySignature returns false when no file-scope key signature is in effect at
// tick; callers then use DefaultKeySignature.
func (f *File) KeySignature(tick int64) (KeySignature, bool) {
	return keySignatureOf(f, tick)
}

func (f *File) Tempo(tick int64) (Tempo, bool) {
	return tempoOf(f, tick)
}

func (f *File) TimeSignature(tick int64) (TimeSignature, bool) {
	return timeSignatureOf(f, tick)
}

// Header returns the decoded header chunk, or nil for an empty file.
func (f *File) Header() *Header {
	if len(f.chunks) == 0 {
		return nil
	}
	return f.chunks[0].header
}

func (f *File) Len() int {
	return len(f.chunks)
}

func (f *File) ChunkAt(i int) (*Chunk, error) {
	if i < 0 || i >= len(f.chunks) {
		return nil, indexError(i, len(f.chunks))
	}
	return f.chunks[i], nil
}

// Chunks returns the chunks in file order. The slice is a copy.
func (f *File) Chunks() []*Chunk {
	return append([]*Chunk(nil), f.chunks...)
}

// Tracks returns the track chunks in file order.
func (f *File) Tracks() []*Chunk {
	var tracks []*Chunk
	for _, c := range f.chunks {
		if c.kind == KindTrack {
			tracks = append(tracks, c)
		}
	}
	return tracks
}

// Hex concatenates the hex text of every chunk in file order.
func (f *File) Hex() string {
	var b strings.Builder
	for _, c := range f.chunks {
		b.WriteString(c.Hex())
	}
	return b.String()
}

// Comment concatenates the comment text of every chunk in file order.
func (f *File) Comment() string {
	var b strings.Builder
	for _, c := range f.chunks {
		b.WriteString(c.Comment())
	}
	return b.String()
}

// Bytes reassembles the file from its items.
func (f *File) Bytes() []byte {
	var out []byte
	for _, c := range f.chunks {
		out = append(out, c.Bytes()...)
	}
	return out
}

func (f *File) logger() logrus.FieldLogger {
	if f == nil || f.opts == nil {
		return logrus.StandardLogger()
	}
	return f.opts.log
}
