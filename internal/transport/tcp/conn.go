// Package tcp provides the raw TCP line transport for the lobby.
package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/omochice/socket-draughts/pkg/protocol"
)

// Conn adapts net.Conn to lobby.Conn.
type Conn struct {
	conn  net.Conn
	lines *protocol.LineReader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return NewConnWithReader(conn, nil)
}

// NewConnWithReader wraps a net.Conn whose first bytes were already buffered
// in br while detecting the protocol.
func NewConnWithReader(conn net.Conn, br *bufio.Reader) *Conn {
	var r io.Reader = conn
	if br != nil {
		r = br
	}
	return &Conn{conn: conn, lines: protocol.NewLineReader(r)}
}

// ReadLine implements lobby.Conn. It returns ctx.Err() once ctx is done.
func (c *Conn) ReadLine(ctx context.Context) (string, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	line, err := c.lines.NextLine()
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	return line, err
}

// Write implements lobby.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

// Close implements lobby.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements lobby.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
