package midi_test

import (
	"bytes"
	"encoding/binary"
)

// chunkBytes frames body as a chunk with the given tag.
func chunkBytes(tag string, body ...[]byte) []byte {
	var buffer bytes.Buffer
	var content []byte
	for _, b := range body {
		content = append(content, b...)
	}
	var size4Bytes = make([]byte, 4)
	binary.BigEndian.PutUint32(size4Bytes, uint32(len(content)))
	buffer.WriteString(tag)
	buffer.Write(size4Bytes)
	buffer.Write(content)
	return buffer.Bytes()
}

func headerBytes(format, ntrks, division uint16) []byte {
	var size2Bytes = make([]byte, 2)
	var body []byte
	for _, w := range []uint16{format, ntrks, division} {
		binary.BigEndian.PutUint16(size2Bytes, w)
		body = append(body, size2Bytes...)
	}
	return chunkBytes("MThd", body)
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

var (
	endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

	// Track one names itself and switches to two sharps at tick 480.
	pianoTrack = chunkBytes("MTrk",
		[]byte{0x00, 0xFF, 0x03, 0x05, 'P', 'i', 'a', 'n', 'o'},
		[]byte{0x83, 0x60, 0xFF, 0x59, 0x02, 0x02, 0x00},
		endOfTrack,
	)
	// Track two has no key signature and uses running status for its note off.
	drumTrack = chunkBytes("MTrk",
		[]byte{0x00, 0x90, 0x3C, 0x64},
		[]byte{0x83, 0x60, 0x3C, 0x00},
		endOfTrack,
	)
	twoTrackFile = join(headerBytes(1, 2, 480), pianoTrack, drumTrack)
)
