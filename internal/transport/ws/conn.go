// Package ws provides the WebSocket line transport for the lobby. Each text
// frame carries protocol bytes; lines may span frames.
package ws

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/socket-draughts/pkg/protocol"
)

// Conn adapts an upgraded WebSocket connection to lobby.Conn.
type Conn struct {
	conn  net.Conn
	lines *protocol.LineReader

	// wmu serializes data frames with control replies sent while reading.
	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Accept performs the server handshake on conn. br holds bytes already read
// from conn, or is nil.
func Accept(conn net.Conn, br *bufio.Reader) (*Conn, error) {
	if br == nil {
		br = bufio.NewReader(conn)
	}
	c := &Conn{conn: conn}
	rw := &struct {
		io.Reader
		io.Writer
	}{br, lockedWriter{c}}

	if _, err := ws.Upgrade(rw); err != nil {
		return nil, err
	}
	c.lines = protocol.NewLineReader(&frameReader{rw: rw})
	return c, nil
}

// ReadLine implements lobby.Conn.
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

// Write implements lobby.Conn. data is sent as a single text frame.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return wsutil.WriteServerText(c.conn, data)
}

// Close sends a normal closure frame and closes the connection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
		c.wmu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr implements lobby.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

type lockedWriter struct {
	c *Conn
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.wmu.Lock()
	defer w.c.wmu.Unlock()
	return w.c.conn.Write(p)
}

// frameReader exposes the payloads of incoming data frames as a byte stream.
type frameReader struct {
	rw      io.ReadWriter
	pending bytes.Buffer
}

func (f *frameReader) Read(p []byte) (int, error) {
	for f.pending.Len() == 0 {
		data, _, err := wsutil.ReadClientData(f.rw)
		if err != nil {
			var closed wsutil.ClosedError
			if errors.As(err, &closed) {
				return 0, io.EOF
			}
			return 0, err
		}
		f.pending.Write(data)
	}
	return f.pending.Read(p)
}
