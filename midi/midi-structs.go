package midi

/*
This file contains data structures and byte constants used by the midi package.
*/

const (
	msbMask       = 1 << 7
	sevenBitMask  = 0x7F
	highOrderMask = 0xF0
	lowOrderMask  = 0x0F

	// The following byte constants represent the set of Channel Voice
	// events seen in a MIDI message TrackEvent.
	NoteOffEvent          = 0x80
	NoteOnEvent           = 0x90
	PolyphonicKeyPressure = 0xA0
	ControlChange         = 0xB0
	ProgramChange         = 0xC0
	ChannelPressure       = 0xD0
	PitchWheelChange      = 0xE0

	// Status bytes that are not channel voice messages.
	SysExEvent       = 0xF0
	SysExEscapeEvent = 0xF7
	MetaEvent        = 0xFF

	// Meta-event types. The byte following 0xFF in a track.
	MetaSequenceNumber    = 0x00
	MetaText              = 0x01
	MetaCopyright         = 0x02
	MetaTrackName         = 0x03
	MetaInstrumentName    = 0x04
	MetaLyric             = 0x05
	MetaMarker            = 0x06
	MetaCuePoint          = 0x07
	MetaProgramName       = 0x08
	MetaDeviceName        = 0x09
	MetaChannelPrefix     = 0x20
	MetaPort              = 0x21
	MetaEndOfTrack        = 0x2F
	MetaTempo             = 0x51
	MetaSMPTEOffset       = 0x54
	MetaTimeSignature     = 0x58
	MetaKeySignature      = 0x59
	MetaSequencerSpecific = 0x7F

	// chunkHeaderSize is the type tag plus the 32-bit length.
	chunkHeaderSize = 8
	// headerBodySize is the minimum MThd body: format, ntrks and division.
	headerBodySize = 6
	// maxVLQBytes bounds a variable length quantity in a standard MIDI file.
	maxVLQBytes = 4
)

var (
	headerChunk = [4]byte{'M', 'T', 'h', 'd'}
	trackChunk  = [4]byte{'M', 'T', 'r', 'k'}
)

// ChunkKind is the closed set of chunk variants a Chunk can be.
type ChunkKind int

const (
	// KindGeneric chunks carry an unrecognized tag and an opaque body.
	KindGeneric ChunkKind = iota
	// KindHeader is the MThd chunk.
	KindHeader
	// KindTrack is an MTrk chunk.
	KindTrack
)

func (k ChunkKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindTrack:
		return "track"
	}
	return "generic"
}

// kindOf maps a chunk type tag to the variant that must parse it.
func kindOf(tag [4]byte) ChunkKind {
	switch tag {
	case headerChunk:
		return KindHeader
	case trackChunk:
		return KindTrack
	}
	return KindGeneric
}

/*
A Header holds the decoded body of the MThd chunk. The format is:

	<Header Chunk> = <chunk type><length><format><ntrks><division>

The data section contains three 16-bit words, stored most-significant byte
first. The first word, <format>, specifies the overall organisation of the file.
The next word, <ntrks>, is the number of track chunks in the file. It will
always be 1 for a format 0 file. The third word, <division>, specifies the
meaning of the delta-times.
*/
type Header struct {
	Format   uint16
	Ntrks    uint16
	Division Division
}
