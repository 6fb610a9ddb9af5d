package transcript

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-test/deep"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestWriterReader_Sequence(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	base := time.Unix(1700000000, 42)
	w.now = func() time.Time { return base }

	lines := []struct {
		dir  Direction
		line string
	}{
		{Inbound, "WELCOME BLACK"},
		{Inbound, "YOUR_TURN"},
		{Outbound, "MOVE 7 7 6 6"},
	}
	for _, l := range lines {
		if err := w.Record(l.dir, l.line); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	r := NewReader(&buf)
	var got []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, e)
	}

	want := []Entry{
		{Direction: Inbound, Line: "WELCOME BLACK", Time: base},
		{Direction: Inbound, Line: "YOUR_TURN", Time: base},
		{Direction: Outbound, Line: "MOVE 7 7 6 6", Time: base},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestReader_SkipsUnknownFields(t *testing.T) {
	var body []byte
	body = protowire.AppendTag(body, 9, protowire.BytesType)
	body = protowire.AppendString(body, "extra")
	body = protowire.AppendTag(body, fieldLine, protowire.BytesType)
	body = protowire.AppendString(body, "DRAW")
	frame := protowire.AppendVarint(nil, uint64(len(body)))
	frame = append(frame, body...)

	e, err := NewReader(bytes.NewReader(frame)).Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if e.Line != "DRAW" {
		t.Errorf("Line = %q, want DRAW", e.Line)
	}
}

func TestReader_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Record(Inbound, "YOU_WIN"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	data := buf.Bytes()[:buf.Len()-2]

	_, err := NewReader(bytes.NewReader(data)).Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Errorf("Next() on truncated record error = %v, want decode error", err)
	}
}

func TestDirection_String(t *testing.T) {
	if Inbound.String() != "<-" || Outbound.String() != "->" || Direction(0).String() != "??" {
		t.Error("unexpected direction labels")
	}
}
