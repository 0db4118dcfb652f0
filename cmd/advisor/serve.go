package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/advisor"
	"github.com/fwojciec/advisor/fsnotify"
	"github.com/fwojciec/advisor/httpapi"
	"github.com/fwojciec/advisor/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	addr        string
	idleTimeout time.Duration
	tokenTTL    time.Duration
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve advising sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&opts.idleTimeout, "idle-timeout", 30*time.Minute, "Expire sessions idle this long")
	cmd.Flags().DurationVar(&opts.tokenTTL, "token-ttl", 12*time.Hour, "Session token lifetime")
	return cmd
}

func runServe(opts serveOptions) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, logger, cleanup, err := setup(true)
	if err != nil {
		return err
	}
	defer cleanup()
	if cfg.JWTSecret == "" {
		return errors.New("ADVISOR_JWT_SECRET not set")
	}

	composer, err := loadComposer(policyPath)
	if err != nil {
		return err
	}
	gen, err := resolveGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	metrics := prometheus.NewMetrics(nil)
	roster := advisor.NewRosterCache(rosterSource(cfg), logger)
	watcher, err := fsnotify.New(cfg.Roster, roster,
		fsnotify.WithLogger(logger),
		fsnotify.WithOnChange(metrics.RosterReloads.Inc))
	if err != nil {
		return err
	}
	if err := preloadRoster(ctx, roster, logger); err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("roster reload disabled", zap.Error(err))
	}
	defer watcher.Stop()

	loop := advisor.NewLoop(prometheus.InstrumentGenerator(gen, metrics), cfg.KB,
		advisor.WithComposer(composer), advisor.WithLogger(logger))
	registry := httpapi.NewRegistry(opts.idleTimeout)
	api := httpapi.New(httpapi.Config{Secret: []byte(cfg.JWTSecret), TokenTTL: opts.tokenTTL},
		loop, roster, registry, metrics, logger)
	janitorDone := registry.StartJanitor(ctx, time.Minute)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", opts.addr), zap.String("provider", cfg.Provider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	stop()
	<-janitorDone
	return nil
}
