package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tasktracker/internal/server"
	"tasktracker/internal/storage/local"
	"tasktracker/pkg/translator"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr      string
		staticDir string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and serve the frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				a.cfg.StaticDir = staticDir
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watch
			}
			return a.serve()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&staticDir, "static", "", "Directory with built frontend")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the local snapshot when it changes on disk")
	return cmd
}

func (a *app) serve() error {
	logger, err := a.logger(os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("ToDo application v." + Version)

	repo, err := a.openRepository(logger)
	if err != nil {
		logger.Error("unable to open storage", slog.String("storage", a.cfg.Storage), slog.String("error", err.Error()))
		return err
	}
	defer repo.Close()

	bundle, err := translator.New(translator.Config{TranslationFolder: a.cfg.TranslationDir, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if store, ok := repo.(*local.Store); ok && a.cfg.Watch {
		go func() {
			if err := store.Watch(ctx); err != nil {
				logger.Error("snapshot watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	srv := server.New(repo, bundle, logger, a.cfg.StaticDir)
	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("storage", a.cfg.Storage))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
