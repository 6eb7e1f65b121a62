package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

/*
An Event is one decoded track event. Status is always the effective status
byte, even when the stream relied on running status to omit it. For meta-events
MetaType holds the type byte and Data the payload after the length; for sysex
Data is the payload after the length; for channel messages Data holds the one or
two data bytes.
*/
type Event struct {
	Delta    uint32
	Tick     int64
	Status   byte
	Running  bool
	MetaType byte
	Data     []byte
}

func (e *Event) IsMeta() bool {
	return e.Status == MetaEvent
}

func (e *Event) IsSysEx() bool {
	return e.Status == SysExEvent || e.Status == SysExEscapeEvent
}

// Channel returns the channel of a channel voice message, or -1.
func (e *Event) Channel() int {
	if e.Status >= SysExEvent {
		return -1
	}
	return int(e.Status & lowOrderMask)
}

// IsEndOfTrack reports whether e is the FF 2F meta-event.
func (e *Event) IsEndOfTrack() bool {
	return e.IsMeta() && e.MetaType == MetaEndOfTrack
}

// Describe renders the comment for the item holding this event.
func (e *Event) Describe([]byte) string {
	return fmt.Sprintf("[tick %d +%d] %s", e.Tick, e.Delta, e.body())
}

func (e *Event) body() string {
	switch {
	case e.IsMeta():
		return e.describeMeta()
	case e.Status == SysExEvent:
		return fmt.Sprintf("System exclusive, %d bytes", len(e.Data))
	case e.Status == SysExEscapeEvent:
		return fmt.Sprintf("System exclusive escape, %d bytes", len(e.Data))
	}
	msg := gomidi.Message(append([]byte{e.Status}, e.Data...))
	if e.Running {
		return msg.String() + " (running status)"
	}
	return msg.String()
}

var textMetaNames = map[byte]string{
	MetaText:           "Text",
	MetaCopyright:      "Copyright",
	MetaTrackName:      "Track name",
	MetaInstrumentName: "Instrument name",
	MetaLyric:          "Lyric",
	MetaMarker:         "Marker",
	MetaCuePoint:       "Cue point",
	MetaProgramName:    "Program name",
	MetaDeviceName:     "Device name",
}

func (e *Event) describeMeta() string {
	if name, ok := textMetaNames[e.MetaType]; ok {
		return fmt.Sprintf("%s %q", name, string(e.Data))
	}
	d := e.Data
	switch e.MetaType {
	case MetaSequenceNumber:
		if len(d) == 2 {
			return fmt.Sprintf("Sequence number %d", int(d[0])<<8|int(d[1]))
		}
	case MetaChannelPrefix:
		if len(d) == 1 {
			return fmt.Sprintf("Channel prefix %d", d[0])
		}
	case MetaPort:
		if len(d) == 1 {
			return fmt.Sprintf("Port %d", d[0])
		}
	case MetaEndOfTrack:
		if len(d) == 0 {
			return "End of track"
		}
	case MetaTempo:
		if t, ok := e.Tempo(); ok {
			return "Tempo " + t.String()
		}
	case MetaSMPTEOffset:
		if len(d) == 5 {
			return fmt.Sprintf("SMPTE offset %02d:%02d:%02d:%02d.%02d",
				d[0]&0x1F, d[1], d[2], d[3], d[4])
		}
	case MetaTimeSignature:
		if ts, ok := e.TimeSignature(); ok {
			return fmt.Sprintf("Time signature %s, %d clocks per click, %d 32nds per quarter",
				ts, ts.ClocksPerClick, ts.ThirtySecondsPerQuarter)
		}
	case MetaKeySignature:
		if ks, ok := e.KeySignature(); ok {
			return "Key signature " + ks.String()
		}
	case MetaSequencerSpecific:
		return fmt.Sprintf("Sequencer specific, %d bytes", len(d))
	default:
		return fmt.Sprintf("Meta-event 0x%02X, %d bytes", e.MetaType, len(d))
	}
	return fmt.Sprintf("Malformed meta-event 0x%02X, %d bytes", e.MetaType, len(d))
}

// Attribute identifies a time-scoped attribute by the meta-event that sets it.
type Attribute byte

const (
	AttrTempo         Attribute = MetaTempo
	AttrTimeSignature Attribute = MetaTimeSignature
	AttrKeySignature  Attribute = MetaKeySignature
)

func (a Attribute) String() string {
	switch a {
	case AttrTempo:
		return "tempo"
	case AttrTimeSignature:
		return "time signature"
	case AttrKeySignature:
		return "key signature"
	}
	return fmt.Sprintf("attribute 0x%02X", byte(a))
}

// attribute reports which time-scoped attribute e sets, if any. Malformed
// payloads set nothing.
func (e *Event) attribute() (Attribute, bool) {
	if !e.IsMeta() {
		return 0, false
	}
	var ok bool
	switch e.MetaType {
	case MetaTempo:
		_, ok = e.Tempo()
	case MetaTimeSignature:
		_, ok = e.TimeSignature()
	case MetaKeySignature:
		_, ok = e.KeySignature()
	}
	return Attribute(e.MetaType), ok
}

func (i *Item) attribute() (Attribute, bool) {
	if i.event == nil {
		return 0, false
	}
	return i.event.attribute()
}

// Tempo is the FF 51 payload: microseconds per quarter note.
type Tempo uint32

// DefaultTempo applies when no tempo meta-event is in scope (120 BPM).
const DefaultTempo Tempo = 500000

func (t Tempo) BPM() float64 {
	if t == 0 {
		return 0
	}
	return 60000000 / float64(t)
}

func (t Tempo) String() string {
	return fmt.Sprintf("%d us per quarter (%.2f BPM)", uint32(t), t.BPM())
}

func (e *Event) Tempo() (Tempo, bool) {
	if !e.IsMeta() || e.MetaType != MetaTempo || len(e.Data) != 3 {
		return 0, false
	}
	return Tempo(uint32(e.Data[0])<<16 | uint32(e.Data[1])<<8 | uint32(e.Data[2])), true
}

// TimeSignature is the FF 58 payload. The denominator is stored as a power of
// two, as in the file.
type TimeSignature struct {
	Numerator               uint8
	DenominatorPower        uint8
	ClocksPerClick          uint8
	ThirtySecondsPerQuarter uint8
}

// DefaultTimeSignature is 4/4 with the conventional metronome settings.
var DefaultTimeSignature = TimeSignature{4, 2, 24, 8}

func (ts TimeSignature) Denominator() int {
	return 1 << ts.DenominatorPower
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator())
}

func (e *Event) TimeSignature() (TimeSignature, bool) {
	if !e.IsMeta() || e.MetaType != MetaTimeSignature || len(e.Data) != 4 {
		return TimeSignature{}, false
	}
	d := e.Data
	return TimeSignature{d[0], d[1], d[2], d[3]}, true
}

// KeySignature is the FF 59 payload. Negative Sharps count flats.
type KeySignature struct {
	Sharps int8
	Minor  bool
}

// DefaultKeySignature is C major, no accidentals.
var DefaultKeySignature = KeySignature{}

var (
	majorKeys = [15]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorKeys = [15]string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}
)

// Name returns the key, e.g. "D major". Counts outside -7..7 have no name.
func (k KeySignature) Name() string {
	i := int(k.Sharps) + 7
	if i < 0 || i >= len(majorKeys) {
		return "unknown key"
	}
	if k.Minor {
		return minorKeys[i] + " minor"
	}
	return majorKeys[i] + " major"
}

func (k KeySignature) String() string {
	n := int(k.Sharps)
	var acc string
	switch {
	case n == 0:
		acc = "no accidentals"
	case n == 1:
		acc = "1 sharp"
	case n > 1:
		acc = fmt.Sprintf("%d sharps", n)
	case n == -1:
		acc = "1 flat"
	default:
		acc = fmt.Sprintf("%d flats", -n)
	}
	return acc + ", " + k.Name()
}

func (e *Event) KeySignature() (KeySignature, bool) {
	if !e.IsMeta() || e.MetaType != MetaKeySignature || len(e.Data) != 2 || e.Data[1] > 1 {
		return KeySignature{}, false
	}
	return KeySignature{Sharps: int8(e.Data[0]), Minor: e.Data[1] == 1}, true
}
