// Package game is the referee used by the reference server. It knows enough
// of the draughts rules to drive the protocol: steps, jumps, capture chains,
// crowning and the end of the game.
package game

import (
	"errors"
	"fmt"

	"github.com/omochice/socket-draughts/internal/board"
)

var (
	// ErrNotYourTurn is returned when a player moves out of turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrIllegalMove is returned for moves the rules do not allow.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned for moves after the game has finished.
	ErrGameOver = errors.New("game is over")
)

// Result is the state of a game.
type Result int

const (
	Running Result = iota
	WhiteWins
	BlackWins
	Draw
)

// String returns a readable result.
func (r Result) String() string {
	switch r {
	case Running:
		return "running"
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// DrawAfter is the number of consecutive king moves without a capture after
// which the game is drawn.
const DrawAfter = 40

// Outcome describes what a legal move did.
type Outcome struct {
	Captured bool
	Crowned  bool
	// Continue is set when the mover must keep capturing with the same piece.
	Continue bool
	Result   Result
}

// Game holds one board and whose turn it is. It is not safe for concurrent
// use; the lobby serializes access.
type Game struct {
	cells  [board.Cells]rune
	turn   board.Color
	chain  *board.Coordinate
	quiet  int
	result Result
}

// New returns a game in the starting position with white to move.
func New() *Game {
	g := &Game{turn: board.ColorWhite}
	for i := range g.cells {
		g.cells[i] = board.Filler
	}
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			if !board.Dark(r, c) {
				continue
			}
			switch {
			case r < 3:
				g.cells[r*board.Size+c] = board.BlackMan
			case r >= board.Size-3:
				g.cells[r*board.Size+c] = board.WhiteMan
			}
		}
	}
	return g
}

// FromSnapshot builds a game from a position, with turn to move.
func FromSnapshot(s board.Snapshot, turn board.Color) *Game {
	g := &Game{turn: turn}
	copy(g.cells[:], board.Normalize(string(s)).Cells())
	return g
}

// Turn returns the color to move.
func (g *Game) Turn() board.Color { return g.turn }

// Result returns the current result.
func (g *Game) Result() Result { return g.result }

// Chain returns the piece that must keep capturing, if any.
func (g *Game) Chain() (board.Coordinate, bool) {
	if g.chain == nil {
		return board.Coordinate{}, false
	}
	return *g.chain, true
}

// Snapshot returns the canonical 64-cell board.
func (g *Game) Snapshot() board.Snapshot {
	return board.Snapshot(string(g.cells[:]))
}

// Winner returns the winning color, or ColorUnknown while running or drawn.
func (g *Game) Winner() board.Color {
	switch g.result {
	case WhiteWins:
		return board.ColorWhite
	case BlackWins:
		return board.ColorBlack
	default:
		return board.ColorUnknown
	}
}

// Move plays from -> to for color. Coordinates are canonical.
func (g *Game) Move(color board.Color, from, to board.Coordinate) (Outcome, error) {
	if g.result != Running {
		return Outcome{}, ErrGameOver
	}
	if color != g.turn {
		return Outcome{}, ErrNotYourTurn
	}
	if !from.InBounds() || !to.InBounds() {
		return Outcome{}, fmt.Errorf("%w: off the board", ErrIllegalMove)
	}

	piece := g.at(from)
	if owner(piece) != color {
		return Outcome{}, fmt.Errorf("%w: no own piece at %d,%d", ErrIllegalMove, from.Row, from.Col)
	}
	if g.at(to) != board.Filler {
		return Outcome{}, fmt.Errorf("%w: target occupied", ErrIllegalMove)
	}
	if g.chain != nil && from != *g.chain {
		return Outcome{}, fmt.Errorf("%w: must continue capturing with %d,%d", ErrIllegalMove, g.chain.Row, g.chain.Col)
	}

	dr, dc := to.Row-from.Row, to.Col-from.Col
	if !allowedDirection(piece, dr) {
		return Outcome{}, fmt.Errorf("%w: men move forward only", ErrIllegalMove)
	}

	var out Outcome
	switch {
	case abs(dr) == 1 && abs(dc) == 1:
		if g.chain != nil {
			return Outcome{}, fmt.Errorf("%w: must capture", ErrIllegalMove)
		}
	case abs(dr) == 2 && abs(dc) == 2:
		mid := board.Coordinate{Row: from.Row + dr/2, Col: from.Col + dc/2}
		if owner(g.at(mid)) != color.Opponent() {
			return Outcome{}, fmt.Errorf("%w: nothing to capture", ErrIllegalMove)
		}
		g.set(mid, board.Filler)
		out.Captured = true
	default:
		return Outcome{}, fmt.Errorf("%w: not a diagonal step or jump", ErrIllegalMove)
	}

	g.set(to, piece)
	g.set(from, board.Filler)

	if crowns(piece, to) {
		g.set(to, king(piece))
		out.Crowned = true
	}

	if out.Captured || !isKing(piece) {
		g.quiet = 0
	} else {
		g.quiet++
	}

	// A capture that did not crown continues while the piece can still jump.
	if out.Captured && !out.Crowned && g.canCapture(to) {
		c := to
		g.chain = &c
		out.Continue = true
		out.Result = g.result
		return out, nil
	}

	g.chain = nil
	g.turn = color.Opponent()
	switch {
	case !g.hasMove(g.turn):
		if color == board.ColorWhite {
			g.result = WhiteWins
		} else {
			g.result = BlackWins
		}
	case g.quiet >= DrawAfter:
		g.result = Draw
	}
	out.Result = g.result
	return out, nil
}

// Resign ends the game in favor of color's opponent.
func (g *Game) Resign(color board.Color) {
	if g.result != Running {
		return
	}
	if color == board.ColorWhite {
		g.result = BlackWins
	} else {
		g.result = WhiteWins
	}
}

func (g *Game) at(c board.Coordinate) rune {
	return g.cells[board.Index(c)]
}

func (g *Game) set(c board.Coordinate, piece rune) {
	g.cells[board.Index(c)] = piece
}

var diagonals = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

func (g *Game) canCapture(from board.Coordinate) bool {
	piece := g.at(from)
	color := owner(piece)
	for _, d := range diagonals {
		if !allowedDirection(piece, d[0]) {
			continue
		}
		mid := board.Coordinate{Row: from.Row + d[0], Col: from.Col + d[1]}
		to := board.Coordinate{Row: from.Row + 2*d[0], Col: from.Col + 2*d[1]}
		if to.InBounds() && g.at(to) == board.Filler && owner(g.at(mid)) == color.Opponent() {
			return true
		}
	}
	return false
}

func (g *Game) canStep(from board.Coordinate) bool {
	piece := g.at(from)
	for _, d := range diagonals {
		if !allowedDirection(piece, d[0]) {
			continue
		}
		to := board.Coordinate{Row: from.Row + d[0], Col: from.Col + d[1]}
		if to.InBounds() && g.at(to) == board.Filler {
			return true
		}
	}
	return false
}

// hasMove reports whether color has any piece that can step or capture.
func (g *Game) hasMove(color board.Color) bool {
	for i, piece := range g.cells {
		if owner(piece) != color {
			continue
		}
		from := board.Coordinate{Row: i / board.Size, Col: i % board.Size}
		if g.canStep(from) || g.canCapture(from) {
			return true
		}
	}
	return false
}

func owner(piece rune) board.Color {
	switch piece {
	case board.WhiteMan, board.WhiteKing:
		return board.ColorWhite
	case board.BlackMan, board.BlackKing:
		return board.ColorBlack
	default:
		return board.ColorUnknown
	}
}

func isKing(piece rune) bool {
	return piece == board.WhiteKing || piece == board.BlackKing
}

func king(piece rune) rune {
	switch piece {
	case board.WhiteMan:
		return board.WhiteKing
	case board.BlackMan:
		return board.BlackKing
	default:
		return piece
	}
}

// allowedDirection: white men move up the board, black men down.
func allowedDirection(piece rune, dr int) bool {
	switch piece {
	case board.WhiteMan:
		return dr < 0
	case board.BlackMan:
		return dr > 0
	default:
		return true
	}
}

func crowns(piece rune, to board.Coordinate) bool {
	return (piece == board.WhiteMan && to.Row == 0) ||
		(piece == board.BlackMan && to.Row == board.Size-1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
