// Package server runs the reference draughts server on a single port that
// accepts both raw TCP line clients and WebSocket clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omochice/socket-draughts/internal/lobby"
	"github.com/omochice/socket-draughts/internal/logging"
	"github.com/omochice/socket-draughts/internal/transport/tcp"
	"github.com/omochice/socket-draughts/internal/transport/ws"
)

// DefaultDetectTimeout is used when New is given a non-positive timeout.
const DefaultDetectTimeout = 250 * time.Millisecond

// Server represents a server that handles both TCP and WebSocket connections.
type Server struct {
	address       string
	detectTimeout time.Duration
	lobby         *lobby.Lobby
	log           *zap.SugaredLogger

	mu       sync.Mutex
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Server that hands every client to l.
func New(address string, detectTimeout time.Duration, l *lobby.Lobby, log *zap.SugaredLogger) *Server {
	if detectTimeout <= 0 {
		detectTimeout = DefaultDetectTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		address:       address,
		detectTimeout: detectTimeout,
		lobby:         l,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.log.Infow("unified server started", "addr", listener.Addr().String())
	return nil
}

// Serve accepts connections until Stop is called.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("server is not listening")
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			s.log.Warnw("failed to accept connection", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// Start listens and serves. It blocks until Stop is called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop stops accepting, releases every client and waits for them.
func (s *Server) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleConnection determines whether the connection is HTTP (WebSocket) or TCP.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	remote := conn.RemoteAddr().String()

	kind, reader, err := detectProtocol(conn, s.detectTimeout)
	if err != nil {
		s.log.Debugw("connection closed before protocol detection", "remote", remote, "error", err)
		conn.Close()
		return
	}
	s.log.Debugw("accepted connection", "remote", remote, "protocol", kind.String())

	if kind == protocolHTTP {
		wsConn, err := ws.Accept(conn, reader)
		if err != nil {
			s.log.Warnw("failed to upgrade connection", "remote", remote, "error", err)
			conn.Close()
			return
		}
		s.lobby.Serve(s.ctx, wsConn)
		return
	}
	s.lobby.Serve(s.ctx, tcp.NewConnWithReader(conn, reader))
}
