package riff

/**
 * RIFF MIDI (RMID) container support. An RMID file is a RIFF file whose form
 * type is "RMID" and whose "data" chunk holds a complete Standard MIDI File.
 * See http://www.midi.org/techspecs/rmid.php.
 */

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const (
	Data           string = "data"
	DataError      string = "no data chunk found before end of file"
	Riff           string = "RIFF"
	RiffError      string = "Invalid initial chunk ID of %s. Should be 'RIFF'."
	Rmid           string = "RMID"
	RmidError      string = "Invalid form type of %s. Should be 'RMID'."
	EmptyDataError string = "refusing to wrap an empty SMF"
	RiffSizeOffset int64  = 4
	DataSizeOffset int64  = 16
	DataOffset     int64  = 20
)

/**
 * All chunks within a RIFF file contain an ID and a size in bytes. The ID
 * is big-endian while the size is little-endian.
 */
type SubChunk struct {
	Id   uint32
	Size uint32
}

/**
 * The Riff header chunk is the first chunk in a well-formed RMID file. The ID
 * of the chunk is always the four ASCII characters "RIFF". It is followed by
 * the size of the rest of the file and the form type "RMID".
 */
type RiffHeader struct {
	*SubChunk
	Format uint32
}

/**
 * Given a uint32, will return the string value where each byte is interpreted
 * as an ASCII character. Bytes are interpreted in big endian format.
 */
func uint32AsString(number *uint32) string {
	buffer := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buffer, binary.BigEndian, number)
	return buffer.String()
}

func stringAsUint32(s string) uint32 {
	return binary.BigEndian.Uint32([]byte(s))
}

/**
 * A utility method for reading a SubChunk. An error is returned from this
 * function if there was an error in reading the necessary bytes.
 */
func readSubChunk(reader io.Reader) (*SubChunk, error) {
	newSubChunk := &SubChunk{}
	if err := binary.Read(
		reader, binary.BigEndian, &newSubChunk.Id); err != nil {
		return nil, err
	}
	if err := binary.Read(
		reader, binary.LittleEndian, &newSubChunk.Size); err != nil {
		return nil, err
	}
	return newSubChunk, nil
}

/**
 * A utility method for reading and validating the Riff header of an RMID file.
 */
func readRiffHeader(reader io.Reader) (*RiffHeader, error) {
	subChunk, err := readSubChunk(reader)
	if err != nil {
		return nil, err
	}
	uintString := uint32AsString(&subChunk.Id)
	if uintString != Riff {
		return nil, errors.New(fmt.Sprintf(RiffError, uintString))
	}
	riffHeader := &RiffHeader{subChunk, uint32(0)}
	if err := binary.Read(
		reader, binary.BigEndian, &riffHeader.Format); err != nil {
		return nil, errors.Wrap(err, "Error reading Format")
	}
	uintString = uint32AsString(&riffHeader.Format)
	if uintString != Rmid {
		return nil, errors.New(fmt.Sprintf(RmidError, uintString))
	}
	return riffHeader, nil
}

// IsRIFF reports whether buf starts with an RMID header.
func IsRIFF(buf []byte) bool {
	return len(buf) >= 12 && string(buf[:4]) == Riff && string(buf[8:12]) == Rmid
}

/**
 * Unwrap reads an RMID file and returns the bytes of its "data" chunk, the
 * embedded Standard MIDI File. Chunks before it (such as LIST/INFO) are
 * skipped, honouring the RIFF rule that odd-sized chunks are padded to an even
 * length.
 */
func Unwrap(r io.Reader) ([]byte, error) {
	bufferedReader := bufio.NewReader(r)
	if _, err := readRiffHeader(bufferedReader); err != nil {
		return nil, err
	}
	for {
		subChunk, err := readSubChunk(bufferedReader)
		if err == io.EOF {
			return nil, errors.New(DataError)
		}
		if err != nil {
			return nil, err
		}
		if uint32AsString(&subChunk.Id) == Data {
			data, err := io.ReadAll(io.LimitReader(bufferedReader, int64(subChunk.Size)))
			if err != nil {
				return nil, errors.Wrap(err, "Error reading data chunk")
			}
			if len(data) != int(subChunk.Size) {
				return nil, errors.Wrap(io.ErrUnexpectedEOF, "Error reading data chunk")
			}
			return data, nil
		}
		skip := int64(subChunk.Size) + int64(subChunk.Size&1)
		if _, err := io.CopyN(io.Discard, bufferedReader, skip); err != nil {
			return nil, errors.Wrapf(err, "Error skipping %s chunk",
				uint32AsString(&subChunk.Id))
		}
	}
}
