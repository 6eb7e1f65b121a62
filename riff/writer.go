package riff

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// The Writer holds the RMID header and data chunk sizes as well as the buffer
// being written to.
type Writer struct {
	Riff   *RiffHeader
	Data   *SubChunk
	buffer io.WriterAt
}

/**
 * Returns a Writer that wraps Standard MIDI File bytes in an RMID container.
 * The RIFF header and an empty data chunk are written immediately; every call
 * to Write appends to the data chunk and patches both sizes in place.
 */
func NewWriter(output io.WriterAt) (*Writer, error) {
	w := &Writer{
		Riff: &RiffHeader{
			&SubChunk{Id: stringAsUint32(Riff), Size: uint32(12)},
			stringAsUint32(Rmid),
		},
		Data:   &SubChunk{Id: stringAsUint32(Data), Size: uint32(0)},
		buffer: output,
	}
	if err := w.writeInitialData(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeAt(order binary.ByteOrder, value interface{}, offset int64) error {
	var buffer = new(bytes.Buffer)
	binary.Write(buffer, order, value)
	_, err := w.buffer.WriteAt(buffer.Bytes(), offset)
	return err
}

/**
 * A private method on the Writer that writes the initial riff header and the
 * data chunk header to the WriterAt.
 */
func (w *Writer) writeInitialData() error {
	steps := []struct {
		order  binary.ByteOrder
		value  uint32
		offset int64
	}{
		{binary.BigEndian, w.Riff.Id, 0},
		{binary.LittleEndian, w.Riff.Size, RiffSizeOffset},
		{binary.BigEndian, w.Riff.Format, 8},
		{binary.BigEndian, w.Data.Id, 12},
		{binary.LittleEndian, w.Data.Size, DataSizeOffset},
	}
	for _, s := range steps {
		if err := w.writeAt(s.order, s.value, s.offset); err != nil {
			return errors.Wrap(err, "Error writing RMID header")
		}
	}
	return nil
}

/**
 * Appends smf to the data chunk. The bytes must be written before the data
 * size gets updated so the correct data offset can be calculated.
 */
func (w *Writer) Write(smf []byte) error {
	if len(smf) == 0 {
		return errors.New(EmptyDataError)
	}
	offset := DataOffset + int64(w.Data.Size)
	if _, err := w.buffer.WriteAt(smf, offset); err != nil {
		return err
	}
	w.Riff.Size += uint32(len(smf))
	w.Data.Size += uint32(len(smf))

	if err := w.writeAt(binary.LittleEndian, w.Riff.Size, RiffSizeOffset); err != nil {
		return err
	}
	return w.writeAt(binary.LittleEndian, w.Data.Size, DataSizeOffset)
}

// Close pads an odd-sized data chunk to an even length, as RIFF requires.
func (w *Writer) Close() error {
	if w.Data.Size&1 == 0 {
		return nil
	}
	if _, err := w.buffer.WriteAt([]byte{0}, DataOffset+int64(w.Data.Size)); err != nil {
		return err
	}
	w.Riff.Size++
	return w.writeAt(binary.LittleEndian, w.Riff.Size, RiffSizeOffset)
}
