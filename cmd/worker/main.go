package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/bootstrap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := bootstrap.ProvideLogger()
	cfg := bootstrap.ProvideConfig()

	repos := bootstrap.BuildRepos(cfg)
	rec := bootstrap.BuildMetrics()
	rates, err := bootstrap.BuildRatesService(cfg, repos, application.NoopIdempotency{}, rec, logger)
	if err != nil {
		logger.Fatal("bootstrap rates service", zap.Error(err))
	}

	sched := bootstrap.BuildScheduler(cfg, rates, logger)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
}
