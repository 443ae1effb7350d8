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

	"go.uber.org/zap"

	"github.com/awmpietro/quantum-dilemma/internal/app"
	"github.com/awmpietro/quantum-dilemma/internal/config"
	"github.com/awmpietro/quantum-dilemma/internal/logger"
	"github.com/awmpietro/quantum-dilemma/internal/metrics"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/narrative/cache"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
	"github.com/awmpietro/quantum-dilemma/internal/transport/httptransport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	graph, err := cfg.Graph()
	if err != nil {
		return fmt.Errorf("narrative: %w", err)
	}
	palette, err := cfg.ColorPalette()
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}

	promObserver := metrics.NewObserver()
	observer := timeline.NewAsyncTransitionObserver(timeline.Observers{
		timeline.NewTransitionLogger(log.Named("timeline")),
		promObserver,
	}, cfg.ObsBuffer)
	defer observer.Close()

	svc := app.NewService(
		narrative.NewCompiler(),
		cache.NewInMemory(cfg.CacheMaxItems),
		app.WithDefaultGraph(graph),
		app.WithPalette(palette),
		app.WithObserver(observer),
	)
	h := httptransport.NewHandler(svc, log.Named("http"))

	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("/metrics", promObserver.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("narrative", graph.Name), zap.Int("dilemmas", len(graph.Dilemmas)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if dropped := observer.Dropped(); dropped > 0 {
		log.Warn("transition events dropped", zap.Uint64("dropped", dropped))
	}
	return nil
}
