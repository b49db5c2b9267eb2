package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mowens/linkvault/internal/config"
	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/server"
)

// DaemonOptions carries overrides for the standalone daemon binary.
type DaemonOptions struct {
	Addr   string
	DBPath string
}

// ServeDaemon runs the quick-save HTTP server until SIGINT or SIGTERM.
// It is the entry point for both the linkvaultd binary and the serve
// command.
func ServeDaemon(opts DaemonOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Addr != "" {
		cfg.ListenAddr = opts.Addr
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logger.New(cfg.LogLevel, false)
	defer log.Sync()

	fetchTimeout := time.Duration(cfg.FetchTimeoutSecs) * time.Second
	deps := server.NewDeps(database, cfg.AssetsDir, log, fetchTimeout)
	srv := server.New(cfg.ListenAddr, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return err
	}
	return <-errCh
}
