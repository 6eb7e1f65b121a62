package midi_test

import (
	"regexp"
	"testing"

	. "github.com/asigalov61/MIDIopsy/midi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(s string) [4]byte {
	var t [4]byte
	copy(t[:], s)
	return t
}

func TestGenericChunkRejectsReservedTags(t *testing.T) {
	for _, buf := range [][]byte{headerBytes(0, 1, 96), pianoTrack} {
		typ := tag(string(buf[:4]))
		chunk, err := NewChunk(nil, typ, uint32(len(buf)-8), buf, 0)
		assert.Nil(t, chunk)
		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, string(buf[:4]), fe.Chunk)
		re := regexp.MustCompile("reserved chunk type")
		assert.NotEqual(t, "", re.FindString(err.Error()))
	}
}

func TestGenericChunkPreservesBody(t *testing.T) {
	buf := chunkBytes("XFIH", []byte("abc\x00\xFF"))
	chunk, err := NewChunk(nil, tag("XFIH"), 5, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, chunk.Kind())
	assert.Equal(t, "XFIH", chunk.Tag())
	assert.Nil(t, chunk.Header())
	assert.Equal(t, 2, chunk.Len())
	assert.Equal(t, buf, chunk.Bytes())

	body, err := chunk.ItemAt(1)
	require.NoError(t, err)
	assert.Equal(t, "61 62 63 00 FF", body.Hex())
	assert.Equal(t, "5 bytes of XFIH data", body.Comment())
	assert.Equal(t, "58 46 49 48 00 00 00 05\n61 62 63 00 FF\n", chunk.Hex())
	assert.Equal(t, "XFIH chunk, 5 bytes\n5 bytes of XFIH data\n", chunk.Comment())
}

func TestParseChunkOverrun(t *testing.T) {
	buf := chunkBytes("XFIH", []byte("abc"))
	chunk, err := ParseChunk(nil, tag("XFIH"), 3, buf[:9], 0)
	assert.Nil(t, chunk)
	_, err2 := ParseChunk(nil, tag("XFIH"), 3, buf[:6], 0)
	for _, e := range []error{err, err2} {
		var fe *FormatError
		assert.True(t, errors.As(e, &fe))
	}
	re := regexp.MustCompile("runs past the end of the buffer")
	assert.NotEqual(t, "", re.FindString(err.Error()))
}

func TestParseChunkTagMismatch(t *testing.T) {
	buf := chunkBytes("XFIH", []byte("abc"))
	_, err := ParseChunk(nil, tag("XFIG"), 3, buf, 0)
	assert.NotNil(t, err)
	_, err = ParseChunk(nil, tag("XFIH"), 2, buf, 0)
	assert.NotNil(t, err)
}

func TestHeaderChunk(t *testing.T) {
	buf := headerBytes(1, 2, 480)
	chunk, err := ParseChunk(nil, tag("MThd"), 6, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, KindHeader, chunk.Kind())
	assert.Equal(t, &Header{Format: 1, Ntrks: 2, Division: 480}, chunk.Header())
	assert.Equal(t, 4, chunk.Len())
	assert.Equal(t, "4D 54 68 64 00 00 00 06\n00 01\n00 02\n01 E0\n", chunk.Hex())
	assert.Equal(t,
		"MThd chunk, 6 bytes\nFormat 1\n2 tracks\nDivision: 480 ticks per quarter note\n",
		chunk.Comment())
}

func TestHeaderChunkWithExtraBytes(t *testing.T) {
	buf := chunkBytes("MThd", []byte{0, 0, 0, 1, 0, 96, 0xAB, 0xCD})
	chunk, err := ParseChunk(nil, tag("MThd"), 8, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, chunk.Len())
	extra, err := chunk.ItemAt(4)
	require.NoError(t, err)
	assert.Equal(t, "AB CD", extra.Hex())
	assert.Equal(t, "2 bytes of extra header data", extra.Comment())
}

func TestHeaderChunkTooShort(t *testing.T) {
	buf := chunkBytes("MThd", []byte{0, 0, 0, 1})
	_, err := ParseChunk(nil, tag("MThd"), 4, buf, 0)
	re := regexp.MustCompile("expected a header length of at least 6 but found a length of 4")
	require.NotNil(t, err)
	assert.NotEqual(t, "", re.FindString(err.Error()))
}

func TestTrackChunkEvents(t *testing.T) {
	chunk, err := ParseChunk(nil, tag("MTrk"), uint32(len(drumTrack)-8), drumTrack, 0)
	require.NoError(t, err)
	assert.Equal(t, KindTrack, chunk.Kind())
	require.Equal(t, 4, chunk.Len())

	on, err := chunk.ItemAt(1)
	require.NoError(t, err)
	assert.Equal(t, "00 90 3C 64", on.Hex())
	require.NotNil(t, on.Event())
	assert.Equal(t, byte(0x90), on.Event().Status)
	assert.False(t, on.Event().Running)
	assert.Equal(t, 0, on.Event().Channel())

	off, err := chunk.ItemAt(2)
	require.NoError(t, err)
	assert.Equal(t, "83 60 3C 00", off.Hex())
	ev := off.Event()
	assert.True(t, ev.Running)
	assert.Equal(t, byte(0x90), ev.Status)
	assert.Equal(t, []byte{0x3C, 0x00}, ev.Data)
	assert.Equal(t, uint32(480), ev.Delta)
	assert.Equal(t, int64(480), ev.Tick)
	assert.Contains(t, off.Comment(), "[tick 480 +480]")
	assert.Contains(t, off.Comment(), "(running status)")

	end, err := chunk.ItemAt(3)
	require.NoError(t, err)
	assert.True(t, end.Event().IsEndOfTrack())
	assert.Equal(t, "[tick 480 +0] End of track", end.Comment())

	for i := 0; i < chunk.Len(); i++ {
		marker, err := chunk.Marker(i)
		require.NoError(t, err)
		assert.Equal(t, NoTime, marker)
	}
	assert.Equal(t, drumTrack, chunk.Bytes())
}

func TestTrackChunkMetaComments(t *testing.T) {
	chunk, err := ParseChunk(nil, tag("MTrk"), uint32(len(pianoTrack)-8), pianoTrack, 0)
	require.NoError(t, err)
	assert.Equal(t, "MTrk chunk, 20 bytes\n"+
		"[tick 0 +0] Track name \"Piano\"\n"+
		"[tick 480 +480] Key signature 2 sharps, D major\n"+
		"[tick 480 +0] End of track\n", chunk.Comment())

	marker, err := chunk.Marker(2)
	require.NoError(t, err)
	assert.Equal(t, int64(480), marker)
	marker, err = chunk.Marker(3)
	require.NoError(t, err)
	assert.Equal(t, NoTime, marker)
}

func TestTrackChunkSysExAndOtherMeta(t *testing.T) {
	buf := chunkBytes("MTrk",
		[]byte{0x00, 0xF0, 0x03, 0x7E, 0x09, 0xF7},
		[]byte{0x00, 0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40},
		[]byte{0x00, 0xFF, 0x58, 0x04, 0x03, 0x02, 0x18, 0x08},
		[]byte{0x00, 0xFF, 0x60, 0x01, 0x00},
		[]byte{0x00, 0xC0, 0x05},
		endOfTrack,
	)
	chunk, err := ParseChunk(nil, tag("MTrk"), uint32(len(buf)-8), buf, 0)
	require.NoError(t, err)
	require.Equal(t, 7, chunk.Len())

	lines := regexp.MustCompile("\n").Split(chunk.Comment(), -1)
	assert.Equal(t, "[tick 0 +0] System exclusive, 3 bytes", lines[1])
	assert.Equal(t, "[tick 0 +0] Tempo 1000000 us per quarter (60.00 BPM)", lines[2])
	assert.Equal(t, "[tick 0 +0] Time signature 3/4, 24 clocks per click, 8 32nds per quarter", lines[3])
	assert.Equal(t, "[tick 0 +0] Meta-event 0x60, 1 bytes", lines[4])

	tempo, ok := chunk.Tempo(0)
	require.True(t, ok)
	assert.Equal(t, Tempo(1000000), tempo)
	ts, ok := chunk.TimeSignature(10)
	require.True(t, ok)
	assert.Equal(t, TimeSignature{3, 2, 24, 8}, ts)

	program, err := chunk.ItemAt(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05}, program.Event().Data)
}

func TestTrackChunkErrors(t *testing.T) {
	cases := map[string]struct {
		events []byte
		match  string
	}{
		"delta without event":  {[]byte{0x00, 0xFF, 0x2F, 0x00, 0x00}, "crosses the end of the chunk"},
		"note cut short":       {[]byte{0x00, 0x90, 0x3C}, "crosses the end of the chunk"},
		"meta cut short":       {[]byte{0x00, 0xFF, 0x03, 0x05, 'P'}, "crosses the end of the chunk"},
		"open delta":           {[]byte{0x80}, "crosses the end of the chunk"},
		"no running status":    {[]byte{0x00, 0x3C, 0x64}, "without running status"},
		"meta resets running":  {[]byte{0x00, 0x90, 0x3C, 0x64, 0x00, 0xFF, 0x2F, 0x00, 0x00, 0x3C, 0x00}, "without running status"},
		"system common status": {[]byte{0x00, 0xF2, 0x00, 0x00}, "unsupported status byte 0xF2"},
		"five byte delta-time": {[]byte{0x81, 0x81, 0x81, 0x81, 0x01, 0xFF, 0x2F, 0x00}, "longer than 4 bytes"},
		"status as velocity":   {[]byte{0x00, 0x90, 0x3C, 0xFF, 0x00, 0xFF, 0x2F, 0x00}, "status byte 0xFF at offset 11 inside a channel message"},
		"status as program":    {[]byte{0x00, 0xC0, 0x90, 0x3C, 0x64, 0x00, 0xFF, 0x2F, 0x00}, "status byte 0x90 at offset 10"},
		"running status data":  {[]byte{0x00, 0x90, 0x3C, 0x64, 0x00, 0x3C, 0x80, 0x00, 0xFF, 0x2F, 0x00}, "status byte 0x80 at offset 14"},
	}
	for name, c := range cases {
		buf := chunkBytes("MTrk", c.events)
		chunk, err := ParseChunk(nil, tag("MTrk"), uint32(len(c.events)), buf, 0)
		assert.Nil(t, chunk, name)
		var fe *FormatError
		require.True(t, errors.As(err, &fe), name)
		assert.Equal(t, "MTrk", fe.Chunk, name)
		assert.Contains(t, err.Error(), c.match, name)
	}
}

func TestChunkWithoutOwnerHasNoFallback(t *testing.T) {
	chunk, err := ParseChunk(nil, tag("MTrk"), uint32(len(drumTrack)-8), drumTrack, 0)
	require.NoError(t, err)
	_, ok := chunk.KeySignature(1000)
	assert.False(t, ok)
}
