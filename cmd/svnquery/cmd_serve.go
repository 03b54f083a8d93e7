package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/index"
	"github.com/svnquery/svnquery/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	state, err := index.LoadState(cfg.Index.Path, cfg.Repository.URL)
	if err != nil {
		return err
	}
	if state.IsEmpty() {
		return fmt.Errorf("no index at %s; run svnquery index first", cfg.Index.Path)
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(store, state, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	fmt.Printf("%s%ssvnquery server%s listening on %s\n", bold, cyan, reset, addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
