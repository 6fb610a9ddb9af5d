package session

import (
	"fmt"

	"github.com/omochice/socket-draughts/pkg/protocol"
)

// Profile selects the server vocabulary a session understands.
type Profile int

const (
	// ProfileStandard is the full protocol with capture-chain turns and
	// board flipping for the second player.
	ProfileStandard Profile = iota
	// ProfileLegacy is the reduced protocol of older servers: WIN and LOSE
	// instead of YOU_WIN and YOU_LOSE, no capture-chain turns, no flipping.
	ProfileLegacy
)

// ParseProfile maps a configured profile name.
func ParseProfile(name string) (Profile, error) {
	switch name {
	case "", "standard":
		return ProfileStandard, nil
	case "legacy":
		return ProfileLegacy, nil
	default:
		return ProfileStandard, fmt.Errorf("unknown profile %q", name)
	}
}

func (p Profile) flips() bool {
	return p == ProfileStandard
}

type handlerFunc func(s *Session, l protocol.Line) error

type route struct {
	// payload allows text after the keyword; other routes match exact lines.
	payload bool
	handle  handlerFunc
}

type prefixRoute struct {
	prefix string
	handle handlerFunc
}

type routes struct {
	exact    map[string]route
	prefixes []prefixRoute
}

func (p Profile) routes() routes {
	r := routes{
		exact: map[string]route{
			protocol.KeywordBoard:       {payload: true, handle: onBoard},
			protocol.WaitingForOpponent: {handle: notice(msgWaiting)},
			protocol.YourTurn:           {handle: onYourTurn(msgYourMove)},
			protocol.OppTurn:            {handle: onOppTurn},
			protocol.MoveInvalid:        {handle: notice(msgMoveInvalid)},
			protocol.MoveOK:             {handle: notice(msgMoveOK)},
			protocol.OpponentMoved:      {handle: notice(msgOpponentMoved)},
			protocol.Draw:               {handle: terminal(msgDraw)},
			protocol.OpponentLeft:       {handle: terminal(msgOpponentLeft)},
			protocol.ServerFull:         {handle: notice(msgServerFull)},
			protocol.ServerNoMoreGames:  {handle: notice(msgNoMoreGames)},
		},
		prefixes: []prefixRoute{
			{prefix: protocol.ErrorPrefix, handle: onServerError},
		},
	}

	switch p {
	case ProfileLegacy:
		r.exact[protocol.LegacyWin] = route{handle: terminal(msgYouWin)}
		r.exact[protocol.LegacyLose] = route{handle: terminal(msgYouLose)}
	default:
		r.exact[protocol.YourTurnContinue] = route{handle: onYourTurn(msgContinue)}
		r.exact[protocol.OppTurnCaptureChain] = route{handle: onOppTurn}
		r.exact[protocol.YouWin] = route{handle: terminal(msgYouWin)}
		r.exact[protocol.YouLose] = route{handle: terminal(msgYouLose)}
	}
	return r
}

func notice(text string) handlerFunc {
	return func(s *Session, _ protocol.Line) error {
		s.println(text)
		return nil
	}
}

func terminal(text string) handlerFunc {
	return func(s *Session, _ protocol.Line) error {
		s.terminate(text)
		return nil
	}
}

func onBoard(s *Session, l protocol.Line) error {
	s.showBoard(l.Payload)
	return nil
}

// onYourTurn handles both turn signals; the server alone enforces whether a
// capture chain must continue.
func onYourTurn(text string) handlerFunc {
	return func(s *Session, _ protocol.Line) error {
		s.println(text)
		return s.promptMove()
	}
}

func onOppTurn(s *Session, _ protocol.Line) error {
	s.myTurn = false
	s.println(msgOppTurn)
	return nil
}

func onServerError(s *Session, l protocol.Line) error {
	s.println(fmt.Sprintf(msgServerError, l.String()))
	return nil
}
