package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"monthledger/internal/cache"
	"monthledger/internal/cli"
	apphttp "monthledger/internal/http"
	applog "monthledger/internal/log"
	"monthledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(os.Stdout)

	cacheLogger := logger.WithComponent(applog.ComponentCache)
	sessions := cache.NewLRUCache[*services.Session](cfg.SessionMax, cfg.SessionTTL,
		cache.WithEvictionCallback(func(id string, _ *services.Session) {
			cacheLogger.Debug("Session evicted", applog.FieldSessionID, id)
		}))
	manager := cache.NewManager(logger)
	manager.Register(sessions)
	manager.StartCleanup(cfg.SessionCleanupInterval)

	ledgers := services.NewLedgerService(sessions, logger)
	srv := apphttp.NewServer(":"+cfg.Port, ledgers, apphttp.Options{
		Logger:         logger,
		ExportFilename: cfg.ExportFilename,
		ExportFormat:   cfg.ExportFormat,
		SessionTTL:     cfg.SessionTTL,
		OnShutdown:     manager.Stop,
	})

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting monthledger server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"session_ttl", cfg.SessionTTL.String(),
			"session_max", cfg.SessionMax)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
