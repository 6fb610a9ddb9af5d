package server

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestDetectProtocol(t *testing.T) {
	tests := []struct {
		name     string
		send     string
		close    bool
		want     protocolType
		wantRead string
	}{
		{"websocket upgrade", "GET / HTTP/1.1\r\n", false, protocolHTTP, "GET / HTTP/1.1\r\n"},
		{"silent raw client", "", false, protocolTCP, ""},
		{"raw command", "QUIT\n", false, protocolTCP, "QUIT\n"},
		{"short line then close", "Q\n", true, protocolTCP, "Q\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			go func() {
				if tt.send != "" {
					client.Write([]byte(tt.send))
				}
				if tt.close {
					client.Close()
				}
			}()

			got, reader, err := detectProtocol(server, 50*time.Millisecond)
			if err != nil {
				t.Fatalf("detectProtocol() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("detectProtocol() = %v, want %v", got, tt.want)
			}
			if tt.wantRead == "" {
				return
			}

			buf := make([]byte, len(tt.wantRead))
			if _, err := io.ReadFull(reader, buf); err != nil {
				t.Fatalf("replay read error = %v", err)
			}
			if string(buf) != tt.wantRead {
				t.Errorf("replayed %q, want %q", buf, tt.wantRead)
			}
		})
	}
}

func TestDetectProtocol_ClosedBeforeData(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	client.Close()

	if _, _, err := detectProtocol(server, 50*time.Millisecond); err == nil {
		t.Error("detectProtocol() on a closed connection returned nil error")
	}
}

func TestDetectProtocol_SilentClientKeepsReading(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	_, reader, err := detectProtocol(server, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("detectProtocol() error = %v", err)
	}

	go client.Write([]byte("MOVE 5 0 4 1\n"))

	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if line != "MOVE 5 0 4 1\n" {
		t.Errorf("ReadString() = %q", line)
	}
}

func TestDetectProtocol_ShortLineThenCloseOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			return
		}
		c.Write([]byte("Q\n"))
		c.Close()
	}()

	server, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	defer server.Close()

	got, reader, err := detectProtocol(server, time.Second)
	if err != nil {
		t.Fatalf("detectProtocol() error = %v", err)
	}
	if got != protocolTCP {
		t.Errorf("detectProtocol() = %v, want tcp", got)
	}

	buf := make([]byte, 2)
	if _, err := io.ReadFull(reader, buf); err != nil {
		t.Fatalf("replay read error = %v", err)
	}
	if string(buf) != "Q\n" {
		t.Errorf("replayed %q, want %q", buf, "Q\n")
	}
}
