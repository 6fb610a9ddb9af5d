package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/omochice/socket-draughts/internal/board"
	"github.com/omochice/socket-draughts/pkg/protocol"
)

var (
	// ErrTokenCount is returned by ParseMove when the input does not hold
	// exactly four tokens.
	ErrTokenCount = errors.New("need 4 numbers")
	// ErrNotInteger is returned by ParseMove for non-integer tokens.
	ErrNotInteger = errors.New("coordinates must be integers")
)

var quitTokens = map[string]bool{"q": true, "quit": true, "exit": true}

// IsQuit reports whether the input asks to leave the game.
func IsQuit(input string) bool {
	return quitTokens[strings.ToLower(strings.TrimSpace(input))]
}

// ParseMove reads "r1 c1 r2 c2" in player space. Full-width digits are
// accepted. No range check is made; the server decides legality.
func ParseMove(input string) (from, to board.Coordinate, err error) {
	fields := strings.Fields(width.Narrow.String(input))
	if len(fields) != 4 {
		return from, to, fmt.Errorf("%w: got %d", ErrTokenCount, len(fields))
	}

	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return from, to, fmt.Errorf("%w: %q", ErrNotInteger, f)
		}
		v[i] = n
	}
	return board.Coordinate{Row: v[0], Col: v[1]}, board.Coordinate{Row: v[2], Col: v[3]}, nil
}

// EncodeMove converts a player-space move into the canonical MOVE command.
func EncodeMove(from, to board.Coordinate, pov board.Color) protocol.Command {
	return protocol.Move(board.Orient(from, pov), board.Orient(to, pov))
}
