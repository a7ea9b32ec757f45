package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/worker"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Startup failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("Tracker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	registry, err := core.LoadRegistry(cfg.CategoriesFile)
	if err != nil {
		return err
	}
	guard, err := core.ParseCreateGuard(cfg.CreateGuard)
	if err != nil {
		return err
	}

	storeOpts, err := backend.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	store, err := backend.NewFactory(logger).Open(ctx, storeOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Store close failed", log.FieldError, err.Error())
		}
	}()

	tracker := services.NewTracker(store, services.TrackerOptions{
		Registry: registry,
		Guard:    guard,
		Logger:   logger,
	})

	pngCache := cache.NewLRUCache[[]byte](cfg.ChartCacheSize, cfg.ChartCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(pngCache)
	chartService := services.NewChartService(tracker, charts.NewRenderer(), pngCache, logger)

	g, ctx := errgroup.WithContext(ctx)

	var segmentWorker *worker.SegmentWorker
	if cfg.VoiceFeedEnabled() {
		consumer := amqp.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		segmentWorker = worker.NewSegmentWorker(consumer, tracker, logger)
		g.Go(func() error { return segmentWorker.Run(ctx) })
		logger.Info("Voice segment feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Voice segment feed disabled - no AMQP_URL provided")
	}

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}
	if segmentWorker != nil {
		opts.Worker = segmentWorker
	}
	srv := apphttp.NewServer(tracker, chartService, opts)

	g.Go(func() error {
		logger.Info("Starting tracker server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"guard", string(guard))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error { return cacheManager.Run(ctx, cacheSweepInterval) })

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
			return err
		}
		return nil
	})

	return g.Wait()
}
