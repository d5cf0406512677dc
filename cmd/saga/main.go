package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"saga/internal/amqp"
	"saga/internal/cache"
	"saga/internal/cli"
	apphttp "saga/internal/http"
	"saga/internal/ledger"
	"saga/internal/log"
	"saga/internal/services"
	"saga/internal/store"
	"saga/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	logger.Info("Starting saga",
		"port", cfg.Port,
		log.FieldScope, cfg.LedgerScope,
		log.FieldBackend, cfg.StoreBackends)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	stores := cli.InitStore(startCtx, logger, cfg)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	caches.Register(stores.Caches...)
	caches.StartCleanup(cfg.CacheCleanupInterval)

	repo := ledger.NewRepository(stores.Chain, ledger.Config{
		Scope:    cfg.LedgerScope,
		SeedDemo: cfg.SeedDemo,
		Logger:   logger.WithComponent(log.ComponentLedger).Slog(),
	})
	if _, err := repo.Load(startCtx); err != nil {
		// Load always leaves a usable ledger; the process keeps serving it.
		logger.Warn("Ledger loaded with storage errors", log.FieldError, err)
	}
	startCancel()

	var (
		broker  *amqp.Client
		syncErr = make(chan error, 1)
	)
	runCtx, runCancel := context.WithCancel(context.Background())
	if cfg.AMQPURL != "" {
		var err error
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger.WithComponent(log.ComponentAMQP).Slog())
		if err != nil {
			logger.Error("Failed to connect to message broker", log.FieldError, err)
			os.Exit(1)
		}
		repo.SetNotifier(broker)

		syncWorker := worker.NewSyncWorker(broker, repo, logger.WithComponent(log.ComponentWorker).Slog())
		go func() {
			syncErr <- syncWorker.Run(runCtx)
		}()
	} else {
		logger.Info("Cross-process sync disabled - no AMQP_URL provided")
	}

	svc := services.NewLedgerService(repo, services.WithLogger(logger.WithComponent(log.ComponentLedger).Slog()))

	srv := apphttp.NewServer(apphttp.Config{
		Addr:   ":" + cfg.Port,
		Ledger: svc,
		Logger: logger,
		Ready: func(ctx context.Context) error {
			_, err := stores.Chain.Read(ctx, repo.Scope())
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		},
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		runCancel()
		if broker != nil {
			if err := <-syncErr; err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Sync worker stopped with error", log.FieldError, err)
			}
			if err := broker.Close(); err != nil {
				logger.Warn("Failed to close broker connection", log.FieldError, err)
			}
		}
		caches.Stop()
		if err := stores.Cleanup(); err != nil {
			logger.Warn("Failed to close storage", log.FieldError, err)
		}
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
