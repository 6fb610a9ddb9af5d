// Package session implements the client side of a draughts game: it reads
// server lines, keeps the little state needed to interpret them, renders the
// board from the player's seat and turns typed moves into MOVE commands.
package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/omochice/socket-draughts/internal/board"
	"github.com/omochice/socket-draughts/internal/logging"
	"github.com/omochice/socket-draughts/internal/transcript"
	"github.com/omochice/socket-draughts/pkg/protocol"
)

// ErrServerClosed is returned by Run when the transport failed or the server
// went away before a terminal event.
var ErrServerClosed = errors.New("server closed connection")

// Mode is the observable state of a session.
type Mode int

const (
	ModeAwaitingAssignment Mode = iota
	ModeConnected
	ModePromptingMove
	ModeTerminated
)

// String returns a readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeAwaitingAssignment:
		return "awaiting-assignment"
	case ModeConnected:
		return "connected"
	case ModePromptingMove:
		return "prompting-move"
	case ModeTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Recorder receives every line exchanged with the server.
type Recorder interface {
	Record(dir transcript.Direction, line string) error
}

// State is a copy of the session state.
type State struct {
	Mode       Mode
	ColorToken string
	Color      board.Color
	Board      board.Snapshot
	HasBoard   bool
	MyTurn     bool
	Running    bool
}

// Session owns one connection to the server for its whole lifetime.
// It is driven by a single goroutine through Run.
type Session struct {
	conn     io.ReadWriteCloser
	lines    *protocol.LineReader
	input    *protocol.LineReader
	out      io.Writer
	log      *zap.SugaredLogger
	recorder Recorder
	profile  Profile
	routes   routes

	mode       Mode
	colorToken string
	color      board.Color
	lastBoard  board.Snapshot
	hasBoard   bool
	myTurn     bool
	running    bool

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithRecorder records every inbound and outbound line.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithProfile selects the protocol vocabulary.
func WithProfile(p Profile) Option {
	return func(s *Session) { s.profile = p }
}

// New creates a session over conn. Moves are read from input and everything
// meant for the player is written to out.
func New(conn io.ReadWriteCloser, input io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		conn:    conn,
		lines:   protocol.NewLineReader(conn),
		input:   protocol.NewLineReader(input),
		out:     out,
		log:     logging.Nop(),
		profile: ProfileStandard,
		mode:    ModeAwaitingAssignment,
		color:   board.ColorUnknown,
		running: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes = s.profile.routes()
	return s
}

// State returns a copy of the current session state.
func (s *Session) State() State {
	return State{
		Mode:       s.mode,
		ColorToken: s.colorToken,
		Color:      s.color,
		Board:      s.lastBoard,
		HasBoard:   s.hasBoard,
		MyTurn:     s.myTurn,
		Running:    s.running,
	}
}

// Run reads and dispatches server lines until a terminal event, a quit, or
// the end of the stream. The transport is closed on every exit path.
// It returns ErrServerClosed if the connection ended first.
func (s *Session) Run() error {
	defer s.Close()

	for s.running {
		raw, err := s.lines.NextLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warnw("read from server failed", "error", err)
			}
			s.lost()
			return fmt.Errorf("%w: %v", ErrServerClosed, err)
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		s.log.Debugw("received line", "line", line, "mode", s.mode.String())
		s.record(transcript.Inbound, line)

		if err := s.dispatch(line); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the transport. Only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) dispatch(line string) error {
	l := protocol.ParseLine(line)

	if s.mode == ModeAwaitingAssignment && l.Keyword == protocol.KeywordWelcome {
		s.assign(l.Payload)
		return nil
	}

	if r, ok := s.routes.exact[l.Keyword]; ok && (r.payload || l.Payload == "") {
		return r.handle(s, l)
	}
	for _, r := range s.routes.prefixes {
		if strings.HasPrefix(line, r.prefix) {
			return r.handle(s, l)
		}
	}

	s.log.Debugw("ignoring unrecognized line", "line", line)
	return nil
}

func (s *Session) assign(payload string) {
	fields := strings.Fields(payload)
	if len(fields) != 1 {
		s.log.Warnw("malformed color assignment", "payload", payload)
		return
	}
	s.colorToken = fields[0]
	s.color = board.ParseColor(fields[0])
	s.mode = ModeConnected
	s.log.Infow("color assigned", "color", s.colorToken)
	s.println(fmt.Sprintf(msgYourColor, s.colorToken))
}

// pov is the orientation used for rendering and move encoding.
func (s *Session) pov() board.Color {
	if !s.profile.flips() {
		return board.ColorUnknown
	}
	return s.color
}

func (s *Session) showBoard(payload string) {
	s.lastBoard = protocol.ParseBoard(payload)
	s.hasBoard = true

	grid, err := board.Render(s.lastBoard, s.pov())
	if err != nil {
		s.log.Warnw("cannot render board", "error", err)
		s.println(fmt.Sprintf(msgInvalidBoard, s.lastBoard.Len()))
		return
	}
	fmt.Fprint(s.out, grid)
}

// promptMove is the PromptingMove sub-state. It returns once a move was sent
// or the player quit.
func (s *Session) promptMove() error {
	prev := s.mode
	s.mode = ModePromptingMove
	s.myTurn = true

	for {
		fmt.Fprint(s.out, msgPrompt)
		raw, err := s.input.NextLine()
		if err != nil {
			s.log.Infow("input closed during prompt", "error", err)
			s.println("")
			s.println(msgInputClosed)
			return s.quit()
		}

		text := strings.TrimSpace(raw)
		if IsQuit(text) {
			return s.quit()
		}

		from, to, err := ParseMove(text)
		if err != nil {
			if errors.Is(err, ErrNotInteger) {
				s.println(msgNeedIntegers)
			} else {
				s.println(msgNeedFour)
			}
			continue
		}

		if err := s.send(EncodeMove(from, to, s.pov())); err != nil {
			return err
		}
		s.myTurn = false
		s.mode = prev
		return nil
	}
}

func (s *Session) quit() error {
	err := s.send(protocol.Quit())
	s.running = false
	s.mode = ModeTerminated
	if err != nil {
		s.log.Warnw("failed to send quit", "error", err)
	}
	return nil
}

func (s *Session) terminate(notice string) {
	s.println(notice)
	s.running = false
	s.myTurn = false
	s.mode = ModeTerminated
}

// lost ends the session after a transport failure.
func (s *Session) lost() {
	if s.mode == ModeTerminated {
		return
	}
	s.println(msgServerClosed)
	s.running = false
	s.mode = ModeTerminated
}

func (s *Session) send(cmd protocol.Command) error {
	if _, err := s.conn.Write(cmd.Encode()); err != nil {
		s.log.Warnw("write to server failed", "command", cmd.String(), "error", err)
		s.lost()
		return fmt.Errorf("%w: %v", ErrServerClosed, err)
	}
	s.log.Debugw("sent command", "command", cmd.String())
	s.record(transcript.Outbound, cmd.String())
	return nil
}

func (s *Session) record(dir transcript.Direction, line string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(dir, line); err != nil {
		s.log.Warnw("failed to record transcript", "error", err)
	}
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}
