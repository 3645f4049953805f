package bootstrap

import (
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/config"
	"valutatrade-service/internal/infrastructure/httpx"
	"valutatrade-service/internal/infrastructure/jsonstore"
	"valutatrade-service/internal/infrastructure/logx"
	"valutatrade-service/internal/infrastructure/metrics"
	redisstore "valutatrade-service/internal/infrastructure/redis"
	"valutatrade-service/internal/infrastructure/scheduler"
	"valutatrade-service/internal/infrastructure/source"
)

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

// Repos bundles the durable stores built from one data directory.
type Repos struct {
	Rates      *jsonstore.RateStore
	Portfolios *jsonstore.PortfolioRepo
	Users      *jsonstore.UserRepo
}

func BuildRepos(cfg config.Config) Repos {
	return Repos{
		Rates: jsonstore.New(
			filepath.Join(cfg.DataDir, cfg.RatesFile),
			filepath.Join(cfg.DataDir, cfg.HistoryFile),
			cfg.RatesTTL,
			cfg.RatesRetention,
		),
		Portfolios: jsonstore.NewPortfolioRepo(filepath.Join(cfg.DataDir, cfg.PortfoliosFile)),
		Users:      jsonstore.NewUserRepo(filepath.Join(cfg.DataDir, cfg.UsersFile)),
	}
}

// BuildSources instantiates providers in configured order; that order is
// the merge priority. A credentialed source with no credential fails here,
// not at fetch time.
func BuildSources(cfg config.Config) ([]application.RateSource, error) {
	client := &httpx.Client{}
	out := make([]application.RateSource, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case "coingecko":
			out = append(out, source.NewCoinGecko(cfg.CoinGeckoURL, cfg.BaseCurrency, cfg.RequestTimeout, client))
		case "exchangerate":
			src, err := source.NewExchangeRate(cfg.ExchangeRateAPIURL, cfg.ExchangeRateAPIKey, cfg.BaseCurrency, cfg.RequestTimeout, client)
			if err != nil {
				return nil, err
			}
			out = append(out, src)
		case "fake":
			out = append(out, source.NewFake(cfg.BaseCurrency))
		default:
			return nil, fmt.Errorf("unknown source %q in SOURCES", name)
		}
	}
	return out, nil
}

// BuildIdempotency returns the redis-backed store when enabled, otherwise
// the noop that always admits the request.
func BuildIdempotency(cfg config.Config) (application.IdempotencyStore, func(), error) {
	if cfg.IdempotencyBackend != "redis" {
		return application.NoopIdempotency{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.New(client, cfg.IdempotencyTTL), func() { _ = client.Close() }, nil
}

func BuildMetrics() *metrics.Recorder { return metrics.New() }

func BuildRatesService(cfg config.Config, repos Repos, idem application.IdempotencyStore, rec *metrics.Recorder, log *zap.Logger) (*application.RatesService, error) {
	sources, err := BuildSources(cfg)
	if err != nil {
		return nil, err
	}
	return application.NewRatesService(sources, repos.Rates, idem, log,
		application.WithRatesMetrics(rec)), nil
}

func BuildLedgerService(cfg config.Config, repos Repos, rec *metrics.Recorder, log *zap.Logger) *application.LedgerService {
	return application.NewLedgerService(repos.Portfolios, repos.Rates, cfg.BaseCurrency, log,
		application.WithLedgerMetrics(rec))
}

func BuildAuthService(repos Repos, log *zap.Logger) *application.AuthService {
	return application.NewAuthService(repos.Users, repos.Portfolios, log)
}

func BuildScheduler(cfg config.Config, rates *application.RatesService, log *zap.Logger) *scheduler.Scheduler {
	return &scheduler.Scheduler{
		Refresh:  rates.RefreshAll,
		Interval: cfg.UpdateInterval,
		Log:      log,
	}
}
