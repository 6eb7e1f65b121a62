package midi

import (
	"bytes"
	"io"

	"github.com/sirupsen/logrus"
)

/*
A TrackEvent contains 'events' that occur over the course of the MIDI file.
The syntax of an MTrk event is very simple:

	<TrackEvent> = <delta-time><MidiEvent>

<delta-time> is stored as a variable-length quantity. It represents the amount
of time before the following event. Delta-times are always present, even when 0.

parseTrack appends one item per event in buf[start:end]. Items that set a
time-scoped attribute carry their cumulative tick as time marker.
*/
func (c *Chunk) parseTrack(buf []byte, start, end int, log logrus.FieldLogger) error {
	var (
		tick    int64
		running byte
		sawEnd  bool
	)
	for pos := start; pos < end; {
		ev, next, err := c.readEvent(buf, pos, end, &running)
		if err != nil {
			return err
		}
		tick += int64(ev.Delta)
		ev.Tick = tick

		item, err := newEventItem(buf, pos, next-pos, ev)
		if err != nil {
			return err
		}
		marker := NoTime
		if _, ok := ev.attribute(); ok {
			marker = tick
		}
		if err := c.Append(item, marker); err != nil {
			return err
		}
		if ev.IsEndOfTrack() {
			sawEnd = true
		}
		pos = next
	}
	if !sawEnd {
		log.Warnf(MissingEndOfTrack, c.Offset)
	}
	return nil
}

// readEvent decodes the event at buf[pos] and returns it with the offset of the
// byte that follows it. running carries the running status between calls.
func (c *Chunk) readEvent(buf []byte, pos, end int, running *byte) (*Event, int, error) {
	delta, p, err := c.readVLQ(buf, pos, end)
	if err != nil {
		return nil, 0, err
	}
	if p >= end {
		return nil, 0, formatError(c.Tag(), pos, EventOverrunError, pos)
	}

	ev := &Event{Delta: uint32(delta)}
	status := buf[p]
	if status&msbMask == 0 {
		if *running == 0 {
			return nil, 0, formatError(c.Tag(), p, RunningStatusError, status, p)
		}
		ev.Status = *running
		ev.Running = true
	} else {
		ev.Status = status
		p++
	}

	var n int
	switch {
	case ev.Status == MetaEvent:
		*running = 0
		if p >= end {
			return nil, 0, formatError(c.Tag(), pos, EventOverrunError, pos)
		}
		ev.MetaType = buf[p]
		p++
		length, q, err := c.readVLQ(buf, p, end)
		if err != nil {
			return nil, 0, err
		}
		p, n = q, int(length)
	case ev.Status == SysExEvent || ev.Status == SysExEscapeEvent:
		*running = 0
		length, q, err := c.readVLQ(buf, p, end)
		if err != nil {
			return nil, 0, err
		}
		p, n = q, int(length)
	case ev.Status > SysExEvent:
		return nil, 0, formatError(c.Tag(), p-1, UnknownStatusError, ev.Status, p-1)
	default:
		*running = ev.Status
		n = 2
		if kind := ev.Status & highOrderMask; kind == ProgramChange || kind == ChannelPressure {
			n = 1
		}
	}
	if n > end-p {
		return nil, 0, formatError(c.Tag(), pos, EventOverrunError, pos)
	}
	if ev.Status < SysExEvent {
		for i := p; i < p+n; i++ {
			if buf[i]&msbMask != 0 {
				return nil, 0, formatError(c.Tag(), i, DataByteError, buf[i], i)
			}
		}
	}
	ev.Data = append([]byte(nil), buf[p:p+n]...)
	return ev, p + n, nil
}

// readVLQ reads a variable length quantity that must end before end.
func (c *Chunk) readVLQ(buf []byte, pos, end int) (uint64, int, error) {
	value, n, err := ReadVariableLengthQuantity(bytes.NewReader(buf[pos:end]))
	switch {
	case err == io.ErrUnexpectedEOF:
		return 0, 0, formatError(c.Tag(), pos, EventOverrunError, pos)
	case err != nil:
		return 0, 0, formatError(c.Tag(), pos, VLQTooLongError, pos)
	}
	return value, pos + n, nil
}
