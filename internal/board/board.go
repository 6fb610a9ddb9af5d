// Package board holds the 8x8 board model shared by the client renderer and
// the reference server: colors, coordinates, the perspective flip and the
// flattened snapshot the protocol carries.
package board

import "strings"

const (
	// Size is the number of rows and columns.
	Size = 8
	// Cells is the length of a flattened snapshot.
	Cells = Size * Size
	// Filler marks an empty or unknown cell.
	Filler = '.'
)

// Cell markers used by the reference server.
const (
	WhiteMan  = 'w'
	WhiteKing = 'W'
	BlackMan  = 'b'
	BlackKing = 'B'
)

// Color is the side a player was assigned by the server.
type Color int

const (
	ColorUnknown Color = iota
	// ColorWhite is the first player. Its view matches canonical space.
	ColorWhite
	// ColorBlack is the second player. Its view is rotated 180 degrees.
	ColorBlack
)

// ParseColor maps an assignment token to a Color. Unrecognized tokens map to
// ColorUnknown, which renders in canonical orientation.
func ParseColor(token string) Color {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "WHITE", "FIRST_PLAYER":
		return ColorWhite
	case "BLACK", "SECOND_PLAYER":
		return ColorBlack
	default:
		return ColorUnknown
	}
}

// String returns the wire name of the color.
func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "WHITE"
	case ColorBlack:
		return "BLACK"
	default:
		return "UNKNOWN"
	}
}

// Opponent returns the other side. ColorUnknown has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case ColorWhite:
		return ColorBlack
	case ColorBlack:
		return ColorWhite
	default:
		return ColorUnknown
	}
}

// Coordinate is a (row, column) pair. Whether it is in player or canonical
// space depends on the caller.
type Coordinate struct {
	Row int
	Col int
}

// Flip rotates the coordinate 180 degrees.
func (c Coordinate) Flip() Coordinate {
	return Coordinate{Row: Size - 1 - c.Row, Col: Size - 1 - c.Col}
}

// InBounds reports whether the coordinate lies on the board.
func (c Coordinate) InBounds() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Orient converts between player space and canonical space for the given
// point of view. The transform is its own inverse, so the same call works in
// both directions.
func Orient(c Coordinate, pov Color) Coordinate {
	if pov == ColorBlack {
		return c.Flip()
	}
	return c
}

// OrientIndex is Orient for a flattened row-major index.
func OrientIndex(i int, pov Color) int {
	if pov == ColorBlack {
		return Cells - 1 - i
	}
	return i
}

// Index flattens a coordinate into a row-major snapshot index.
func Index(c Coordinate) int {
	return c.Row*Size + c.Col
}

// Dark reports whether the square at canonical (row, col) is a playing
// square. Light squares are shown blank when empty.
func Dark(row, col int) bool {
	return (row+col)%2 == 1
}
