package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-signin-server/internal/config"
	"github.com/jrsteele09/go-signin-server/server"
	"github.com/jrsteele09/go-signin-server/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	repo, closeRepo, err := openRepo(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error().Err(err).Msg("Failed to close session store")
		}
	}()

	manager, err := newSessionManager(c, repo)
	if err != nil {
		return err
	}

	providers, err := newProviderRegistry(ctx, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, providers, manager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(httpServer)
	})
	g.Go(func() error {
		return sessions.RunReaper(gctx, repo, c.GetSessionReapInterval())
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(httpServer)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func loadConfig() (config.Config, error) {
	c, err := config.New()
	if err != nil {
		return nil, err
	}
	setupLogging(c)
	return c, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
