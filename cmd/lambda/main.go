package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/awmpietro/quantum-dilemma/internal/app"
	"github.com/awmpietro/quantum-dilemma/internal/config"
	"github.com/awmpietro/quantum-dilemma/internal/logger"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/narrative/cache"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
	"github.com/awmpietro/quantum-dilemma/internal/transport/lambdatransport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	h, observer, err := newHandler(cfg, log)
	if err != nil {
		log.Error("failed to start", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}

	// lambda.Start never returns; buffered events are flushed when the
	// runtime sends SIGTERM.
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(shutdown(observer, log)))
}

func shutdown(observer *timeline.AsyncTransitionObserver, log *zap.Logger) func() {
	return func() {
		observer.Close()
		_ = log.Sync()
	}
}

func newHandler(cfg config.Runtime, log *zap.Logger) (*lambdatransport.Handler, *timeline.AsyncTransitionObserver, error) {
	graph, err := cfg.Graph()
	if err != nil {
		return nil, nil, fmt.Errorf("load narrative: %w", err)
	}
	palette, err := cfg.ColorPalette()
	if err != nil {
		return nil, nil, fmt.Errorf("load palette: %w", err)
	}

	observer := timeline.NewAsyncTransitionObserver(timeline.NewTransitionLogger(log.Named("timeline")), cfg.ObsBuffer)
	svc := app.NewService(
		narrative.NewCompiler(),
		cache.NewInMemory(cfg.CacheMaxItems),
		app.WithDefaultGraph(graph),
		app.WithPalette(palette),
		app.WithObserver(observer),
	)
	return lambdatransport.NewHandler(svc, log.Named("lambda")), observer, nil
}
