package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"valutatrade-service/internal/bootstrap"
	httpserver "valutatrade-service/internal/infrastructure/http"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := bootstrap.ProvideLogger()
	cfg := bootstrap.ProvideConfig()

	repos := bootstrap.BuildRepos(cfg)
	idem, closeIdem, err := bootstrap.BuildIdempotency(cfg)
	if err != nil {
		logger.Fatal("bootstrap idempotency", zap.Error(err))
	}
	defer closeIdem()

	rec := bootstrap.BuildMetrics()
	rates, err := bootstrap.BuildRatesService(cfg, repos, idem, rec, logger)
	if err != nil {
		logger.Fatal("bootstrap rates service", zap.Error(err))
	}
	ledger := bootstrap.BuildLedgerService(cfg, repos, rec, logger)
	auth := bootstrap.BuildAuthService(repos, logger)

	srv := httpserver.NewServer(rates, ledger, auth)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpserver.NewRouter(srv, rec.Handler()),
	}

	go func() {
		logger.Info("server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
