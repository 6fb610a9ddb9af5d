package lobby_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omochice/socket-draughts/internal/lobby"
)

// mockConn is a mock implementation of lobby.Conn for testing.
type mockConn struct {
	in         chan string
	out        chan string
	closed     chan struct{}
	closeOnce  sync.Once
	remoteAddr string
}

func newMockConn(addr string) *mockConn {
	return &mockConn{
		in:         make(chan string, 16),
		out:        make(chan string, 128),
		closed:     make(chan struct{}),
		remoteAddr: addr,
	}
}

func (m *mockConn) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.closed:
		return "", io.EOF
	case line, ok := <-m.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (m *mockConn) Write(ctx context.Context, data []byte) error {
	m.out <- strings.TrimSuffix(string(data), "\n")
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConn) RemoteAddr() string {
	return m.remoteAddr
}

// expect reads the next lines written to the client and compares them.
// A BOARD line matches any board when want is just "BOARD".
func (m *mockConn) expect(t *testing.T, want ...string) {
	t.Helper()
	for i, w := range want {
		select {
		case got := <-m.out:
			if got != w && !(w == "BOARD" && strings.HasPrefix(got, "BOARD ")) {
				t.Fatalf("%s line %d = %q, want %q", m.remoteAddr, i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: timed out waiting for %q", m.remoteAddr, w)
		}
	}
}

func (m *mockConn) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-m.closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: connection not closed", m.remoteAddr)
	}
}

// Compile-time check that mockConn implements lobby.Conn
var _ lobby.Conn = (*mockConn)(nil)
