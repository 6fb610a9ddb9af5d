package lobby_test

import (
	"context"
	"testing"
	"time"

	"github.com/omochice/socket-draughts/internal/lobby"
)

func serve(ctx context.Context, l *lobby.Lobby, c *mockConn) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Serve(ctx, c)
	}()
	return done
}

// pair connects two players and consumes the game start lines.
func pair(t *testing.T, ctx context.Context, l *lobby.Lobby) (white, black *mockConn) {
	t.Helper()
	white = newMockConn("white")
	black = newMockConn("black")

	serve(ctx, l, white)
	white.expect(t, "WAITING_FOR_OPPONENT")
	serve(ctx, l, black)

	white.expect(t, "WELCOME WHITE", "BOARD", "YOUR_TURN")
	black.expect(t, "WELCOME BLACK", "BOARD", "OPP_TURN")
	return white, black
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLobby_Pairing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)

	pair(t, ctx, l)

	if got := l.PlayerCount(); got != 2 {
		t.Errorf("PlayerCount() = %d, want 2", got)
	}
	if got := l.GameCount(); got != 1 {
		t.Errorf("GameCount() = %d, want 1", got)
	}
}

func TestLobby_StartingBoard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)

	white := newMockConn("white")
	black := newMockConn("black")
	serve(ctx, l, white)
	white.expect(t, "WAITING_FOR_OPPONENT")
	serve(ctx, l, black)

	white.expect(t, "WELCOME WHITE")
	white.expect(t, "BOARD .b.b.b.bb.b.b.b..b.b.b.b................w.w.w.w..w.w.w.ww.w.w.w.")
}

func TestLobby_ServerFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(1, 8, nil)

	first := newMockConn("first")
	serve(ctx, l, first)
	first.expect(t, "WAITING_FOR_OPPONENT")

	second := newMockConn("second")
	done := serve(ctx, l, second)
	second.expect(t, "SERVER_FULL")
	<-done
	second.waitClosed(t)

	if got := l.PlayerCount(); got != 1 {
		t.Errorf("PlayerCount() = %d, want 1", got)
	}
}

func TestLobby_NoMoreGames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 1, nil)

	pair(t, ctx, l)

	third := newMockConn("third")
	serve(ctx, l, third)
	third.expect(t, "WAITING_FOR_OPPONENT")

	fourth := newMockConn("fourth")
	done := serve(ctx, l, fourth)
	fourth.expect(t, "SERVER_NO_MORE_GAMES")
	<-done
	fourth.waitClosed(t)

	if got := l.PlayerCount(); got != 3 {
		t.Errorf("PlayerCount() = %d, want 3", got)
	}
}

func TestLobby_MoveFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)
	white, black := pair(t, ctx, l)

	white.in <- "MOVE 5 0 4 1"
	white.expect(t, "MOVE_OK", "BOARD", "OPP_TURN")
	black.expect(t, "OPPONENT_MOVED", "BOARD", "YOUR_TURN")

	black.in <- "MOVE 2 3 3 2"
	black.expect(t, "MOVE_OK", "BOARD", "OPP_TURN")
	white.expect(t, "OPPONENT_MOVED", "BOARD", "YOUR_TURN")
}

func TestLobby_MoveErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)
	white, black := pair(t, ctx, l)

	tests := []struct {
		name string
		conn *mockConn
		line string
		want []string
	}{
		{"out of turn", black, "MOVE 2 1 3 0", []string{"ERROR_NOT_YOUR_TURN"}},
		{"bad format", white, "MOVE 5 0 4", []string{"ERROR_BAD_FORMAT", "YOUR_TURN"}},
		{"not integers", white, "MOVE a b c d", []string{"ERROR_BAD_FORMAT", "YOUR_TURN"}},
		{"illegal", white, "MOVE 5 0 3 0", []string{"MOVE_INVALID", "YOUR_TURN"}},
		{"unknown", white, "HELLO", []string{"ERROR_UNKNOWN_COMMAND"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.conn.in <- tt.line
			tt.conn.expect(t, tt.want...)
		})
	}
}

func TestLobby_NotInGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)

	c := newMockConn("alone")
	serve(ctx, l, c)
	c.expect(t, "WAITING_FOR_OPPONENT")

	c.in <- "MOVE 5 0 4 1"
	c.expect(t, "ERROR_NOT_IN_GAME")
	c.in <- "MOVE 5 0"
	c.expect(t, "ERROR_BAD_FORMAT")
}

func TestLobby_Quit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)
	white, black := pair(t, ctx, l)

	black.in <- "QUIT"
	white.expect(t, "OPPONENT_LEFT")
	black.waitClosed(t)

	waitFor(t, func() bool { return l.PlayerCount() == 1 && l.GameCount() == 0 })

	white.in <- "MOVE 5 0 4 1"
	white.expect(t, "ERROR_NOT_IN_GAME")
}

func TestLobby_Disconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)
	white, black := pair(t, ctx, l)

	close(white.in)
	black.expect(t, "OPPONENT_LEFT")
	waitFor(t, func() bool { return l.PlayerCount() == 1 })

	next := newMockConn("next")
	serve(ctx, l, next)
	next.expect(t, "WAITING_FOR_OPPONENT")
}

func TestLobby_WaitingPlayerLeaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := lobby.New(16, 8, nil)

	first := newMockConn("first")
	done := serve(ctx, l, first)
	first.expect(t, "WAITING_FOR_OPPONENT")
	first.in <- "QUIT"
	<-done

	second := newMockConn("second")
	serve(ctx, l, second)
	second.expect(t, "WAITING_FOR_OPPONENT")
}

func TestLobby_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := lobby.New(16, 8, nil)

	c := newMockConn("c")
	done := serve(ctx, l, c)
	c.expect(t, "WAITING_FOR_OPPONENT")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if got := l.PlayerCount(); got != 0 {
		t.Errorf("PlayerCount() = %d, want 0", got)
	}
}
