package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vytor/openingstats/internal/api"
	"github.com/vytor/openingstats/internal/jobs"
	"github.com/vytor/openingstats/internal/worker"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run queued imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (default $ADDR)")
	return c
}

// serve runs until ctx is cancelled, then drains the HTTP server and the
// import pool.
func (a *app) serve(ctx context.Context) error {
	log := a.log

	log.Info("===========================================")
	log.Info("openingstats server starting")
	log.Info("===========================================")

	st, err := a.openStore()
	if err != nil {
		log.Error("failed to open database: %v", err)
		return err
	}
	defer st.Close()
	log.Info("database opened at %s", a.cfg.DBPath)

	importPool := worker.NewPool(a.cfg.ImportWorkerCount, a.cfg.ImportQueueSize)
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()
	importPool.Start(workerCtx)

	srv := &api.Server{
		Players: st.players,
		Stats:   a.statsService(st.loader),
		Queue:   jobs.NewWorkerQueue(importPool, st.imports),
		DB:      st.db,
		Sources: a.sources().Names(),
	}

	httpServer := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", a.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			importPool.Stop()
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown requested, draining")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping import pool")
	cancelWorkers()
	importPool.Stop()

	log.Info("openingstats server stopped")
	return nil
}
