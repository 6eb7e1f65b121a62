package midi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTimeOrder is returned by Set.Append when a time marker moves backward.
var ErrTimeOrder = errors.New("time marker precedes an earlier marker")

// ErrMarkerRange is returned by Set.Append for a negative marker other than NoTime.
var ErrMarkerRange = errors.New("time marker is negative")

// A FormatError reports bytes that violate the chunk grammar.
type FormatError struct {
	Chunk  string // four character tag, empty when not yet known
	Offset int    // byte offset into the parsed buffer
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Chunk == "" {
		return fmt.Sprintf("midi: offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("midi: %s chunk at offset %d: %s", e.Chunk, e.Offset, e.Msg)
}

func formatError(chunk string, offset int, format string, args ...interface{}) error {
	return errors.WithStack(&FormatError{
		Chunk:  chunk,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// An IndexError reports an item or chunk index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("midi: index %d out of range [0, %d)", e.Index, e.Len)
}

func indexError(i, n int) error {
	return errors.WithStack(&IndexError{Index: i, Len: n})
}
