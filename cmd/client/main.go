package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/omochice/socket-draughts/internal/client"
	"github.com/omochice/socket-draughts/internal/config"
	"github.com/omochice/socket-draughts/internal/logging"
	"github.com/omochice/socket-draughts/internal/session"
	"github.com/omochice/socket-draughts/internal/transcript"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	config.RegisterClientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: client [flags] <host> <port>")
		fmt.Fprintln(os.Stderr, "  host may be a ws:// or wss:// URL to connect over WebSocket")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	host, port := fs.Arg(0), fs.Arg(1)

	cfg, err := config.LoadClient(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 2
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer log.Sync()

	profile, err := session.ParseProfile(cfg.Profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	conn, err := client.Dial(ctx, host, port)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot connect to %s:%s: %v\n", host, port, err)
		return 1
	}
	log.Infow("connected", "server", conn.RemoteAddr().String(), "profile", cfg.Profile)

	opts := []session.Option{
		session.WithLogger(log),
		session.WithProfile(profile),
	}
	if cfg.Record != "" {
		f, err := os.Create(cfg.Record)
		if err != nil {
			conn.Close()
			fmt.Fprintf(os.Stderr, "Cannot create transcript: %v\n", err)
			return 1
		}
		defer f.Close()
		opts = append(opts, session.WithRecorder(transcript.NewWriter(f)))
	}

	fmt.Printf("Connected to %s\n", conn.RemoteAddr())
	if err := session.New(conn, os.Stdin, os.Stdout, opts...).Run(); err != nil {
		log.Infow("session ended", "error", err)
		if errors.Is(err, session.ErrServerClosed) {
			return 1
		}
	}
	return 0
}
