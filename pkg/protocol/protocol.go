// Package protocol implements the newline-delimited text protocol spoken
// between the draughts server and its clients.
package protocol

import (
	"strings"

	"github.com/omochice/socket-draughts/internal/board"
)

// Server -> client keywords.
const (
	KeywordWelcome = "WELCOME"
	KeywordBoard   = "BOARD"

	WaitingForOpponent  = "WAITING_FOR_OPPONENT"
	YourTurn            = "YOUR_TURN"
	YourTurnContinue    = "YOUR_TURN_CONTINUE_CAPTURE"
	OppTurn             = "OPP_TURN"
	OppTurnCaptureChain = "OPP_TURN_CAPTURE_CHAIN"
	MoveInvalid         = "MOVE_INVALID"
	MoveOK              = "MOVE_OK"
	OpponentMoved       = "OPPONENT_MOVED"
	YouWin              = "YOU_WIN"
	YouLose             = "YOU_LOSE"
	Draw                = "DRAW"
	OpponentLeft        = "OPPONENT_LEFT"
	ServerFull          = "SERVER_FULL"
	ServerNoMoreGames   = "SERVER_NO_MORE_GAMES"
	ErrorPrefix         = "ERROR_"
	ErrorBadFormat      = "ERROR_BAD_FORMAT"
	ErrorNotInGame      = "ERROR_NOT_IN_GAME"
	ErrorNotYourTurn    = "ERROR_NOT_YOUR_TURN"
	ErrorUnknownCommand = "ERROR_UNKNOWN_COMMAND"
)

// Reduced vocabulary of the legacy server profile.
const (
	LegacyWin  = "WIN"
	LegacyLose = "LOSE"
)

// Line is a server line split into its leading keyword and the rest.
type Line struct {
	Keyword string
	Payload string
}

// ParseLine splits a trimmed line on the first run of whitespace.
func ParseLine(raw string) Line {
	raw = strings.TrimSpace(raw)
	i := strings.IndexAny(raw, " \t")
	if i < 0 {
		return Line{Keyword: raw}
	}
	return Line{Keyword: raw[:i], Payload: strings.TrimSpace(raw[i+1:])}
}

// String reassembles the line.
func (l Line) String() string {
	if l.Payload == "" {
		return l.Keyword
	}
	return l.Keyword + " " + l.Payload
}

// ParseBoard normalizes a BOARD payload into a full snapshot.
func ParseBoard(payload string) board.Snapshot {
	return board.Normalize(strings.TrimSpace(payload))
}

// FormatBoard builds the BOARD line for a snapshot, newline included.
func FormatBoard(s board.Snapshot) string {
	return KeywordBoard + " " + string(s) + "\n"
}

// FormatWelcome builds the color assignment line, newline included.
func FormatWelcome(c board.Color) string {
	return KeywordWelcome + " " + c.String() + "\n"
}
