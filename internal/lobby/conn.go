// Package lobby pairs connected players into games and referees them over
// the line protocol, independent of the transport they arrived on.
package lobby

import "context"

// Conn abstracts a line-oriented connection for both TCP and WebSocket.
type Conn interface {
	// ReadLine returns the next line without its terminator.
	// Returns io.EOF when the peer closed the connection.
	ReadLine(ctx context.Context) (string, error)

	// Write sends wire bytes, newline included.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
