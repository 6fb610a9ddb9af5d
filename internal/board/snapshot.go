package board

import "strings"

// Snapshot is a flattened board in canonical orientation, row 0 first.
// Values built with Normalize always hold exactly Cells markers.
type Snapshot string

// Normalize turns raw payload data into a Snapshot of exactly Cells markers.
// Short data is padded with Filler and long data is truncated.
func Normalize(data string) Snapshot {
	cells := []rune(data)
	if len(cells) > Cells {
		cells = cells[:Cells]
	}
	var b strings.Builder
	b.Grow(Cells)
	for _, r := range cells {
		b.WriteRune(r)
	}
	for i := len(cells); i < Cells; i++ {
		b.WriteRune(Filler)
	}
	return Snapshot(b.String())
}

// Cells returns the markers of the snapshot.
func (s Snapshot) Cells() []rune {
	return []rune(string(s))
}

// Len returns the number of markers in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Cells())
}
