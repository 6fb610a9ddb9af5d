package lobby

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omochice/socket-draughts/internal/board"
	"github.com/omochice/socket-draughts/internal/game"
	"github.com/omochice/socket-draughts/internal/logging"
	"github.com/omochice/socket-draughts/pkg/protocol"
)

var (
	// ErrServerFull is returned when every player slot is taken.
	ErrServerFull = errors.New("server full")
	// ErrNoMoreGames is returned when a pairing finds no free game slot.
	ErrNoMoreGames = errors.New("no free game slot")
)

const outgoingBuffer = 64

// Player is one connected client.
type Player struct {
	ID       string
	Conn     Conn
	Outgoing chan string

	color board.Color
	match *match
}

func (p *Player) send(line string) bool {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	select {
	case p.Outgoing <- line:
		return true
	default:
		return false
	}
}

type match struct {
	id    string
	game  *game.Game
	white *Player
	black *Player
}

func (m *match) opponent(p *Player) *Player {
	if p == m.white {
		return m.black
	}
	return m.white
}

// Lobby holds every connected player and running game. All game state is
// guarded by one mutex, so moves of both players are serialized.
type Lobby struct {
	maxPlayers int
	maxGames   int
	log        *zap.SugaredLogger

	mu      sync.Mutex
	players map[string]*Player
	waiting *Player
	matches map[*match]struct{}
}

// New creates a Lobby with the given capacities.
func New(maxPlayers, maxGames int, log *zap.SugaredLogger) *Lobby {
	if log == nil {
		log = logging.Nop()
	}
	return &Lobby{
		maxPlayers: maxPlayers,
		maxGames:   maxGames,
		log:        log,
		players:    make(map[string]*Player),
		matches:    make(map[*match]struct{}),
	}
}

// PlayerCount returns the number of connected players.
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

// GameCount returns the number of running games.
func (l *Lobby) GameCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.matches)
}

// Serve runs one connection until it quits, disconnects or ctx is done.
// The connection is closed before Serve returns.
func (l *Lobby) Serve(ctx context.Context, conn Conn) {
	defer conn.Close()

	p, err := l.join(conn)
	if err != nil {
		reply := protocol.ServerFull
		if errors.Is(err, ErrNoMoreGames) {
			reply = protocol.ServerNoMoreGames
		}
		l.log.Infow("refusing player", "remote", conn.RemoteAddr(), "reason", err)
		if werr := conn.Write(ctx, []byte(reply+"\n")); werr != nil {
			l.log.Debugw("failed to send refusal", "remote", conn.RemoteAddr(), "error", werr)
		}
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.writeLoop(ctx, p)
	}()

	l.readLoop(ctx, p)
	l.leave(p)
	<-done
}

func (l *Lobby) join(conn Conn) (*Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.players) >= l.maxPlayers {
		return nil, ErrServerFull
	}

	p := &Player{
		ID:       uuid.NewString(),
		Conn:     conn,
		Outgoing: make(chan string, outgoingBuffer),
	}

	if l.waiting == nil {
		l.players[p.ID] = p
		l.waiting = p
		l.log.Infow("player waiting", "player", p.ID, "remote", conn.RemoteAddr())
		p.send(protocol.WaitingForOpponent)
		return p, nil
	}

	if len(l.matches) >= l.maxGames {
		return nil, ErrNoMoreGames
	}

	l.players[p.ID] = p
	m := &match{
		id:    uuid.NewString(),
		game:  game.New(),
		white: l.waiting,
		black: p,
	}
	l.waiting = nil
	l.matches[m] = struct{}{}
	m.white.color, m.white.match = board.ColorWhite, m
	m.black.color, m.black.match = board.ColorBlack, m

	l.log.Infow("game started", "game", m.id, "white", m.white.ID, "black", m.black.ID)

	m.white.send(protocol.FormatWelcome(board.ColorWhite))
	m.black.send(protocol.FormatWelcome(board.ColorBlack))
	l.broadcast(m, protocol.FormatBoard(m.game.Snapshot()))
	m.white.send(protocol.YourTurn)
	m.black.send(protocol.OppTurn)
	return p, nil
}

// leave unregisters p and tells its opponent. It closes p.Outgoing.
func (l *Lobby) leave(p *Player) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m := p.match; m != nil {
		op := m.opponent(p)
		m.game.Resign(p.color)
		l.endMatch(m)
		if op != nil {
			l.deliver(op, protocol.OpponentLeft)
		}
		l.log.Infow("player left game", "player", p.ID, "game", m.id)
	}
	if l.waiting == p {
		l.waiting = nil
	}
	delete(l.players, p.ID)
	close(p.Outgoing)
	l.log.Infow("player disconnected", "player", p.ID)
}

func (l *Lobby) readLoop(ctx context.Context, p *Player) {
	for {
		raw, err := p.Conn.ReadLine(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				l.log.Warnw("read from player failed", "player", p.ID, "error", err)
			}
			return
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		l.log.Debugw("received line", "player", p.ID, "line", line)

		cmd, err := protocol.ParseCommand(line)
		switch {
		case errors.Is(err, protocol.ErrBadFormat):
			l.badFormat(p)
		case err != nil:
			l.reply(p, protocol.ErrorUnknownCommand)
		case cmd.Type == protocol.CommandQuit:
			l.log.Infow("player quit", "player", p.ID)
			return
		default:
			l.move(p, cmd)
		}
	}
}

func (l *Lobby) writeLoop(ctx context.Context, p *Player) {
	for line := range p.Outgoing {
		if err := p.Conn.Write(ctx, []byte(line)); err != nil {
			l.log.Warnw("failed to write to player", "player", p.ID, "error", err)
			// Drain so leave can close the channel.
			for range p.Outgoing {
			}
			return
		}
	}
}

func (l *Lobby) reply(p *Player, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliver(p, line)
}

func (l *Lobby) badFormat(p *Player) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.deliver(p, protocol.ErrorBadFormat)
	if m := p.match; m != nil && m.game.Turn() == p.color {
		l.deliver(p, turnPrompt(m.game))
	}
}

func (l *Lobby) move(p *Player, cmd protocol.Command) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := p.match
	if m == nil {
		l.deliver(p, protocol.ErrorNotInGame)
		return
	}
	if m.game.Turn() != p.color {
		l.deliver(p, protocol.ErrorNotYourTurn)
		return
	}

	out, err := m.game.Move(p.color, cmd.From, cmd.To)
	if err != nil {
		l.log.Debugw("move rejected", "player", p.ID, "move", cmd.String(), "error", err)
		l.deliver(p, protocol.MoveInvalid)
		l.deliver(p, turnPrompt(m.game))
		return
	}

	op := m.opponent(p)
	l.deliver(p, protocol.MoveOK)
	l.deliver(op, protocol.OpponentMoved)
	l.broadcast(m, protocol.FormatBoard(m.game.Snapshot()))

	switch {
	case out.Result != game.Running:
		l.finish(m)
	case out.Continue:
		l.deliver(p, protocol.YourTurnContinue)
		l.deliver(op, protocol.OppTurnCaptureChain)
	default:
		l.deliver(op, protocol.YourTurn)
		l.deliver(p, protocol.OppTurn)
	}
}

// finish reports the result of m to both players and frees its slot.
func (l *Lobby) finish(m *match) {
	switch m.game.Winner() {
	case board.ColorWhite:
		l.deliver(m.white, protocol.YouWin)
		l.deliver(m.black, protocol.YouLose)
	case board.ColorBlack:
		l.deliver(m.black, protocol.YouWin)
		l.deliver(m.white, protocol.YouLose)
	default:
		l.broadcast(m, protocol.Draw)
	}
	l.log.Infow("game finished", "game", m.id, "result", m.game.Result().String())
	l.endMatch(m)
}

func (l *Lobby) endMatch(m *match) {
	m.white.match = nil
	m.black.match = nil
	delete(l.matches, m)
}

func (l *Lobby) broadcast(m *match, line string) {
	l.deliver(m.white, line)
	l.deliver(m.black, line)
}

func (l *Lobby) deliver(p *Player, line string) {
	if !p.send(line) {
		l.log.Warnw("player channel full, dropping line", "player", p.ID, "line", strings.TrimSpace(line))
	}
}

func turnPrompt(g *game.Game) string {
	if _, ok := g.Chain(); ok {
		return protocol.YourTurnContinue
	}
	return protocol.YourTurn
}
