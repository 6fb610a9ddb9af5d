// Package client connects the game client to a draughts server over raw TCP
// or WebSocket and exposes the link as a plain byte stream.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Connection represents a connection to the server
type Connection interface {
	// Write sends data to the server
	Write(data []byte) (int, error)

	// Read receives data from the server. It returns io.EOF once the server
	// has closed the connection.
	Read(buf []byte) (int, error)

	// Close closes the connection. Only the first call has an effect.
	Close() error

	// RemoteAddr returns the server address
	RemoteAddr() net.Addr
}

// Dial connects to host:port. A host given as a ws:// or wss:// URL selects
// the WebSocket transport; anything else is dialed as raw TCP.
func Dial(ctx context.Context, host, port string) (Connection, error) {
	if strings.HasPrefix(host, "ws://") || strings.HasPrefix(host, "wss://") {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid server url: %w", err)
		}
		u.Host = net.JoinHostPort(u.Hostname(), port)
		if u.Path == "" {
			u.Path = "/"
		}
		return DialWebSocket(ctx, u.String())
	}
	return DialTCP(ctx, net.JoinHostPort(host, port))
}

// DialTCP opens a raw TCP connection.
func DialTCP(ctx context.Context, address string) (*TCPConnection, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return NewTCPConnection(conn), nil
}

// DialWebSocket performs the WebSocket handshake against urlstr.
func DialWebSocket(ctx context.Context, urlstr string) (*WebSocketConnection, error) {
	conn, br, _, err := ws.Dial(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return newWebSocketConnection(conn, br), nil
}

// TCPConnection wraps net.Conn for TCP connections
type TCPConnection struct {
	conn      net.Conn
	closeOnce sync.Once
	closeErr  error
}

// NewTCPConnection creates a new TCP connection wrapper
func NewTCPConnection(conn net.Conn) *TCPConnection {
	return &TCPConnection{conn: conn}
}

func (tc *TCPConnection) Write(data []byte) (int, error) {
	return tc.conn.Write(data)
}

func (tc *TCPConnection) Read(buf []byte) (int, error) {
	return tc.conn.Read(buf)
}

func (tc *TCPConnection) Close() error {
	tc.closeOnce.Do(func() {
		tc.closeErr = tc.conn.Close()
	})
	return tc.closeErr
}

func (tc *TCPConnection) RemoteAddr() net.Addr {
	return tc.conn.RemoteAddr()
}

// WebSocketConnection wraps a gobwas client connection. Text and binary
// frames are concatenated into one byte stream; every Write is one text frame.
type WebSocketConnection struct {
	conn          net.Conn
	rw            io.ReadWriter
	readBuffer    []byte
	readBufferPos int
	mu            sync.Mutex
	closeOnce     sync.Once
	closeErr      error
}

func newWebSocketConnection(conn net.Conn, br *bufio.Reader) *WebSocketConnection {
	wc := &WebSocketConnection{conn: conn, rw: conn}
	if br != nil {
		// Frames sent right after the handshake may already sit in br.
		wc.rw = struct {
			io.Reader
			io.Writer
		}{io.MultiReader(br, conn), conn}
	}
	return wc
}

func (wc *WebSocketConnection) Write(data []byte) (int, error) {
	err := wsutil.WriteClientText(wc.conn, data)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (wc *WebSocketConnection) Read(buf []byte) (int, error) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	for wc.readBufferPos >= len(wc.readBuffer) {
		data, op, err := wsutil.ReadServerData(wc.rw)
		if err != nil {
			var closed wsutil.ClosedError
			if errors.As(err, &closed) {
				return 0, io.EOF
			}
			return 0, err
		}
		if op != ws.OpText && op != ws.OpBinary {
			continue
		}
		wc.readBuffer = data
		wc.readBufferPos = 0
	}

	n := copy(buf, wc.readBuffer[wc.readBufferPos:])
	wc.readBufferPos += n
	if wc.readBufferPos >= len(wc.readBuffer) {
		wc.readBuffer = nil
		wc.readBufferPos = 0
	}
	return n, nil
}

func (wc *WebSocketConnection) Close() error {
	wc.closeOnce.Do(func() {
		_ = wsutil.WriteClientMessage(wc.conn, ws.OpClose, nil)
		wc.closeErr = wc.conn.Close()
	})
	return wc.closeErr
}

func (wc *WebSocketConnection) RemoteAddr() net.Addr {
	return wc.conn.RemoteAddr()
}
