/*
The Midi package decomposes Standard MIDI Files into typed chunks and items.
Every item keeps its raw bytes alongside a hexadecimal rendering and a
human-readable comment, and every chunk aggregates those renderings as items are
appended. Time-scoped attributes such as the key signature are indexed by the
cumulative tick at which they change, and resolve first against the chunk that
holds them and then against the file.
*/
package midi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	TruncatedError      = "need %d bytes at offset %d but only %d remain"
	ChunkOverrunError   = "declared length %d runs past the end of the buffer (%d bytes remain)"
	ReservedTagError    = "reserved chunk type %q must be parsed as a %s chunk"
	TagMismatchError    = "framing bytes % X do not match the declared type and length"
	FramingError        = "declared length %d but items consumed %d bytes"
	HeaderSizeError     = "expected a header length of at least 6 but found a length of %v"
	FirstChunkError     = "first chunk is %q, expected MThd"
	DuplicateHeaderErr  = "second MThd chunk"
	EmptyFileError      = "no chunks"
	AttributeMetaError  = "meta-event 0x%02X does not set a time-scoped attribute"
	EventOverrunError   = "event at offset %d crosses the end of the chunk"
	RunningStatusError  = "data byte 0x%02X at offset %d without running status"
	DataByteError       = "status byte 0x%02X at offset %d inside a channel message"
	NegativeTickError   = "tick %d is negative"
	VLQTooLongError     = "variable length quantity at offset %d is longer than 4 bytes"
	NotMetaEventError   = "expected a meta-event, got 0x%02X"
	UnknownStatusError  = "unsupported status byte 0x%02X at offset %d"
	TrackCountWarning   = "header declares %d tracks but %d track chunks were found"
	MissingEndOfTrack   = "track chunk at offset %d has no end-of-track meta-event"
	UnknownChunkWarning = "preserving unrecognized chunk %q at offset %d"
)

/*
isLastByte returns true when the passed in byte is the last in a variable length
quanitity.
*/
func isLastByte(b *byte) bool {
	return *b&msbMask != msbMask
}

/*
ReadVariableLengthQuantity consumes bytes from a io.ByteReader according to the
variable length quantity format, where each byte in the sequence, except the
last, has a 1 in the most significant bit. It returns a uint64 containing the
value of the sequence and the number of bytes consumed. A sequence that ends
before its last byte returns io.ErrUnexpectedEOF, and one longer than four bytes
is rejected.
*/
func ReadVariableLengthQuantity(reader io.ByteReader) (uint64, int, error) {
	value := uint64(0)
	for i := 0; i < maxVLQBytes; i++ {
		current, err := reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, i, err
		}
		value = value<<7 + uint64(current&sevenBitMask)
		if isLastByte(&current) {
			return value, i + 1, nil
		}
	}
	return 0, maxVLQBytes, errors.New("variable length quantity longer than 4 bytes")
}

// Division is the third word of the MThd chunk.
type Division uint16

// TicksPerQuarterNote returns 0 when the division is SMPTE based.
func (d Division) TicksPerQuarterNote() uint16 {
	if d&0x8000 != 0 {
		return 0
	}
	return uint16(d)
}

// SMPTE returns frames per second and ticks per frame, or 0, 0 for metrical
// divisions.
func (d Division) SMPTE() (uint8, uint8) {
	if d&0x8000 == 0 {
		return 0, 0
	}
	return uint8(-int8(d >> 8)), uint8(d & 0xFF)
}

func (d Division) String() string {
	if d&0x7FFF == 0 {
		return fmt.Sprintf("invalid division 0x%04X", uint16(d))
	}
	if q := d.TicksPerQuarterNote(); q != 0 {
		return fmt.Sprintf("%d ticks per quarter note", q)
	}
	fps, tpf := d.SMPTE()
	return fmt.Sprintf("%d frames per second, %d ticks per frame", fps, tpf)
}

type options struct {
	log       logrus.FieldLogger
	conductor bool
}

// Option configures Parse.
type Option func(*options)

// WithLogger routes parse diagnostics to l instead of the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = l
	}
}

/*
WithConductorGlobals promotes the time-scoped meta-events of the first track of
a format 1 file to file scope, so that every other track falls back to them.
*/
func WithConductorGlobals() Option {
	return func(o *options) {
		o.conductor = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
