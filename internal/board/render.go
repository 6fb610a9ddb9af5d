package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLength is returned by Render for snapshots that do not hold
// exactly Cells markers.
var ErrInvalidLength = errors.New("invalid board length")

// View maps every player-space cell to the canonical snapshot index it shows.
// Row 0 of the view is the row nearest the viewing player.
func View(pov Color) [Size][Size]int {
	var v [Size][Size]int
	for vr := 0; vr < Size; vr++ {
		for vc := 0; vc < Size; vc++ {
			v[vr][vc] = OrientIndex(Index(Coordinate{Row: vr, Col: vc}), pov)
		}
	}
	return v
}

// Render formats the snapshot as a labelled 8x8 grid seen from pov.
// Labels count in player space; lookups happen in canonical space.
func Render(s Snapshot, pov Color) (string, error) {
	cells := s.Cells()
	if len(cells) != Cells {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, len(cells))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("    0 1 2 3 4 5 6 7 \n")
	b.WriteString("   -----------------\n")

	view := View(pov)
	for vr := 0; vr < Size; vr++ {
		fmt.Fprintf(&b, "%d | ", vr)
		for vc := 0; vc < Size; vc++ {
			i := view[vr][vc]
			ch := cells[i]
			if ch == Filler && !Dark(i/Size, i%Size) {
				ch = ' '
			}
			b.WriteRune(ch)
			b.WriteByte(' ')
		}
		b.WriteString("|\n")
	}

	b.WriteString("   -----------------\n")
	b.WriteString("\n")
	return b.String(), nil
}
