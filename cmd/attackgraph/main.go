// Command attackgraph serves threat-relationship analysis over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/api"
	"github.com/gofastercloud/attackgraph/pkg/config"
	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/metrics"
	"github.com/gofastercloud/attackgraph/pkg/provider"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "attackgraph: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("attackgraph", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "path to YAML config file")
	flags.String("server.addr", ":8080", "HTTP listen address")
	flags.String("feed.path", "", "local feed file (JSON, YAML, or .sz)")
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feedProvider, err := selectProvider(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("loading feed", logging.String("source", feedProvider.Name()))

	// The first build is fail-fast: a server with no snapshot has nothing
	// to serve.
	feed, err := feedProvider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("initial feed fetch: %w", err)
	}
	snap, err := snapshot.Build(feed)
	if err != nil {
		return fmt.Errorf("initial snapshot build: %w", err)
	}
	handle := snapshot.NewHandle(snap)
	log.Info("initial snapshot built",
		logging.SnapshotID(snap.ID),
		logging.Count("entities", snap.Store.EntityCount()),
		logging.Count("relationships", snap.Index.EdgeCount()))

	reg := metrics.NewRegistry()
	// Record the initial snapshot's sizes; the refresher only updates the
	// gauges on later refreshes, which may be disabled.
	provider.PublishSnapshotStats(reg, snap)
	engine := analysis.NewEngine(handle, log, reg)
	server := api.NewServer(engine, handle, log, reg)

	if cfg.Feed.Refresh > 0 || cfg.Feed.Watch {
		watchPath := ""
		if cfg.Feed.Watch {
			watchPath = cfg.Feed.Path
		}
		refresher := provider.NewRefresher(feedProvider, handle, log, reg, cfg.Feed.Refresh, watchPath)
		go func() {
			if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("refresher stopped", logging.Error(err))
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logging.String("addr", cfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func selectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if cfg.UsesS3() {
		return provider.NewS3Provider(ctx, cfg.Feed.S3.Bucket, cfg.Feed.S3.Key, cfg.Feed.S3.Region)
	}
	return provider.NewFileProvider(cfg.Feed.Path), nil
}
