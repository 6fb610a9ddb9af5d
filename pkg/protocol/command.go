package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/omochice/socket-draughts/internal/board"
)

// CommandType identifies a client -> server command.
type CommandType int

const (
	CommandMove CommandType = iota
	CommandQuit
)

// String returns the wire keyword of the command type.
func (ct CommandType) String() string {
	switch ct {
	case CommandMove:
		return "MOVE"
	case CommandQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// ErrBadFormat is returned by ParseCommand for MOVE lines without exactly
// four integers.
var ErrBadFormat = errors.New("bad command format")

// ErrUnknownCommand is returned by ParseCommand for unrecognized keywords.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a client -> server command. Move coordinates are always in
// canonical space.
type Command struct {
	Type CommandType
	From board.Coordinate
	To   board.Coordinate
}

// Move builds a MOVE command.
func Move(from, to board.Coordinate) Command {
	return Command{Type: CommandMove, From: from, To: to}
}

// Quit builds a QUIT command.
func Quit() Command {
	return Command{Type: CommandQuit}
}

// String returns the wire line without the trailing newline.
func (c Command) String() string {
	if c.Type == CommandMove {
		return fmt.Sprintf("MOVE %d %d %d %d", c.From.Row, c.From.Col, c.To.Row, c.To.Col)
	}
	return c.Type.String()
}

// Encode returns the newline-terminated wire form of the command.
func (c Command) Encode() []byte {
	return []byte(c.String() + "\n")
}

// ParseCommand decodes a client line. It is used by the server side.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}

	switch fields[0] {
	case "QUIT":
		return Quit(), nil
	case "MOVE":
		if len(fields) != 5 {
			return Command{}, fmt.Errorf("%w: want 4 coordinates, got %d", ErrBadFormat, len(fields)-1)
		}
		var v [4]int
		for i, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return Command{}, fmt.Errorf("%w: %q is not an integer", ErrBadFormat, f)
			}
			v[i] = n
		}
		return Move(board.Coordinate{Row: v[0], Col: v[1]}, board.Coordinate{Row: v[2], Col: v[3]}), nil
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
}
