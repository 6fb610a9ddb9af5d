package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/omochice/socket-draughts/internal/config"
	"github.com/omochice/socket-draughts/internal/lobby"
	"github.com/omochice/socket-draughts/internal/logging"
	"github.com/omochice/socket-draughts/internal/server"
	"github.com/omochice/socket-draughts/internal/transport/tcp"
	"github.com/omochice/socket-draughts/internal/transport/ws"
)

type listener interface {
	Start() error
	Stop()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	config.RegisterServerFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadServer(fs)
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

	srv := newListener(cfg, lobby.New(cfg.MaxPlayers, cfg.MaxGames, log.Named("lobby")), log)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Infow("starting server", "listen", cfg.Listen, "mode", cfg.Mode,
			"max_players", cfg.MaxPlayers, "max_games", cfg.MaxGames)
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Errorw("server error", "error", err)
			return 1
		}
	case sig := <-sigChan:
		log.Infow("received signal, shutting down", "signal", sig.String())
		srv.Stop()
	}

	log.Info("server stopped")
	return 0
}

func newListener(cfg *config.Server, l *lobby.Lobby, log *zap.SugaredLogger) listener {
	switch cfg.Mode {
	case config.ModeTCP:
		return tcp.New(cfg.Listen, l, log.Named("tcp"))
	case config.ModeWS:
		return ws.New(cfg.Listen, l, log.Named("ws"))
	default:
		return server.New(cfg.Listen, cfg.DetectTimeout, l, log.Named("server"))
	}
}
