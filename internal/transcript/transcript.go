// Package transcript records the lines exchanged during a session as
// length-delimited protobuf records, for later inspection.
//
// Each record is a varint length followed by a message with the fields
//
//	1: direction (varint)
//	2: line (bytes)
//	3: unix nanoseconds (varint)
package transcript

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Direction tells which side sent a line.
type Direction int

const (
	Inbound  Direction = 1 // server -> client
	Outbound Direction = 2 // client -> server
)

// String returns an arrow-style label for the direction.
func (d Direction) String() string {
	switch d {
	case Inbound:
		return "<-"
	case Outbound:
		return "->"
	default:
		return "??"
	}
}

const (
	fieldDirection protowire.Number = 1
	fieldLine      protowire.Number = 2
	fieldTime      protowire.Number = 3
)

// maxRecordSize bounds a single record when reading.
const maxRecordSize = 1 << 20

// Entry is one recorded line.
type Entry struct {
	Direction Direction
	Line      string
	Time      time.Time
}

// Writer appends entries to an io.Writer.
type Writer struct {
	w   io.Writer
	now func() time.Time
	mu  sync.Mutex
}

// NewWriter returns a Writer that appends to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, now: time.Now}
}

// Record writes a line with the current time.
func (w *Writer) Record(dir Direction, line string) error {
	return w.Write(Entry{Direction: dir, Line: line, Time: w.now()})
}

// Write encodes a single entry.
func (w *Writer) Write(e Entry) error {
	var body []byte
	body = protowire.AppendTag(body, fieldDirection, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(e.Direction))
	body = protowire.AppendTag(body, fieldLine, protowire.BytesType)
	body = protowire.AppendString(body, e.Line)
	body = protowire.AppendTag(body, fieldTime, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(e.Time.UnixNano()))

	frame := protowire.AppendVarint(make([]byte, 0, len(body)+binary.MaxVarintLen64), uint64(len(body)))
	frame = append(frame, body...)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write transcript entry: %w", err)
	}
	return nil
}

// Reader decodes entries written by Writer.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next entry, or io.EOF after the last one.
func (r *Reader) Next() (Entry, error) {
	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("failed to read record length: %w", err)
	}
	if size > maxRecordSize {
		return Entry{}, fmt.Errorf("record too large: %d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return Entry{}, fmt.Errorf("failed to read record: %w", err)
	}
	return decode(body)
}

func decode(b []byte) (Entry, error) {
	var e Entry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, fmt.Errorf("failed to decode record: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldDirection && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("failed to decode direction: %w", protowire.ParseError(n))
			}
			e.Direction = Direction(v)
			b = b[n:]
		case num == fieldLine && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("failed to decode line: %w", protowire.ParseError(n))
			}
			e.Line = v
			b = b[n:]
		case num == fieldTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("failed to decode time: %w", protowire.ParseError(n))
			}
			e.Time = time.Unix(0, int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Entry{}, fmt.Errorf("failed to skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return e, nil
}
