package application

import (
	"context"

	"valutatrade-service/internal/domain"
)

// RateSource is one external rate provider. Fetch returns quotes keyed by
// pair key; a failing provider reports a *domain.SourceError and the
// refresh cycle moves on without it.
type RateSource interface {
	Name() string
	Fetch(ctx context.Context) (map[string]domain.Quote, error)
}

// RateStore is the durable, atomically updated cache of latest quotes plus
// the append-only history log.
type RateStore interface {
	// Load returns the full cache view. Read failures yield an empty
	// cache, not an error.
	Load(ctx context.Context) (domain.RateCache, error)
	// Lookup applies the store's freshness ceiling: ErrRateUnavailable
	// when the pair was never cached, ErrRateStale past the TTL.
	Lookup(ctx context.Context, pair domain.Pair) (domain.Quote, error)
	// Merge unions quotes into the cache (new wins) and advances
	// last_refresh in one atomic document replacement. Write failures
	// wrap ErrStoreWrite and leave the previous document intact.
	Merge(ctx context.Context, quotes map[string]domain.Quote) error
	AppendHistory(ctx context.Context, rec domain.HistoryRecord) error
}

type PortfolioRepo interface {
	// GetByUser returns domain.ErrNotFound for users without a portfolio;
	// the ledger creates one lazily on first use.
	GetByUser(ctx context.Context, userID int64) (domain.Portfolio, error)
	Save(ctx context.Context, p domain.Portfolio) error
}

type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	// Create assigns the user id and persists the record.
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// IdempotencyStore handles short-lived request deduplication for one-shot
// refresh triggers.
type IdempotencyStore interface {
	// TryReserve returns true if key was absent and is now reserved.
	TryReserve(ctx context.Context, key string) (bool, error)
}

// NoopIdempotency always succeeds; used when Redis is disabled.
type NoopIdempotency struct{}

func (NoopIdempotency) TryReserve(context.Context, string) (bool, error) { return true, nil }

// MetricsRecorder receives counters from the services; the Prometheus
// implementation lives in infrastructure.
type MetricsRecorder interface {
	RefreshCycle(status string, pairs int)
	SourceFailure(source string)
	LedgerOp(op, outcome string)
}

type NoopMetrics struct{}

func (NoopMetrics) RefreshCycle(string, int) {}
func (NoopMetrics) SourceFailure(string)     {}
func (NoopMetrics) LedgerOp(string, string)  {}
