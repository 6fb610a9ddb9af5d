package server

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

type protocolType int

const (
	protocolTCP protocolType = iota
	protocolHTTP
)

func (p protocolType) String() string {
	if p == protocolHTTP {
		return "websocket"
	}
	return "tcp"
}

var httpMethods = [][]byte{
	[]byte("GET "),
	[]byte("POST"),
	[]byte("PUT "),
	[]byte("HEAD"),
	[]byte("OPTI"), // OPTIONS
	[]byte("PATC"), // PATCH
	[]byte("DELE"), // DELETE
	[]byte("CONN"), // CONNECT
}

// detectProtocol reads the first bytes of conn to tell an HTTP upgrade
// request from a raw line client. Raw clients wait for the server to speak
// first, so silence until timeout means TCP. The returned reader replays the
// bytes consumed here.
func detectProtocol(conn net.Conn, timeout time.Duration) (protocolType, *bufio.Reader, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return protocolTCP, nil, err
	}
	prefix := make([]byte, 4)
	n, err := io.ReadFull(conn, prefix)
	peerClosed := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	// Some conns refuse deadlines once the peer is gone; nothing more will
	// be read then, so the reset does not matter.
	if rerr := conn.SetReadDeadline(time.Time{}); rerr != nil && !peerClosed {
		return protocolTCP, nil, rerr
	}
	prefix = prefix[:n]

	switch {
	case err == nil:
	case errors.Is(err, os.ErrDeadlineExceeded):
	case errors.Is(err, io.ErrUnexpectedEOF) && n > 0:
		// A short line from a raw client that then closed.
	default:
		return protocolTCP, nil, err
	}

	reader := bufio.NewReader(io.MultiReader(bytes.NewReader(prefix), conn))
	for _, m := range httpMethods {
		if bytes.Equal(prefix, m) {
			return protocolHTTP, reader, nil
		}
	}
	return protocolTCP, reader, nil
}
