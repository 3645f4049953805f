package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"valutatrade-service/internal/domain"
)

// RatesService runs refresh cycles over the configured sources and answers
// cache reads. Source order is merge priority: when two sources quote the
// same pair in one cycle, the later source in the list wins.
type RatesService struct {
	sources  []RateSource
	store    RateStore
	idem     IdempotencyStore
	clock    Clock
	log      *zap.Logger
	metrics  MetricsRecorder
	inFlight atomic.Bool
}

type RatesOption func(*RatesService)

func WithRatesClock(c Clock) RatesOption { return func(s *RatesService) { s.clock = c } }

func WithRatesMetrics(m MetricsRecorder) RatesOption {
	return func(s *RatesService) { s.metrics = m }
}

func NewRatesService(sources []RateSource, store RateStore, idem IdempotencyStore, log *zap.Logger, opts ...RatesOption) *RatesService {
	s := &RatesService{sources: sources, store: store, idem: idem, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.idem == nil {
		s.idem = NoopIdempotency{}
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	return s
}

// RequestRefresh deduplicates externally triggered refreshes by key before
// running a cycle. An empty key skips deduplication.
func (s *RatesService) RequestRefresh(ctx context.Context, onlySource, idemKey string) (int, error) {
	if idemKey != "" {
		ok, err := s.idem.TryReserve(ctx, "refresh:"+idemKey)
		if err != nil {
			return 0, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return 0, ErrDuplicateRequest
		}
	}
	return s.Refresh(ctx, onlySource)
}

// RefreshAll runs one cycle over every configured source; the scheduler
// calls this on its interval.
func (s *RatesService) RefreshAll(ctx context.Context) (int, error) {
	return s.Refresh(ctx, "")
}

// Refresh queries every configured source (optionally narrowed to one by
// name), merges the union into the store and appends history. A source
// failure is logged and skipped; a cycle in which every source fails still
// merges an empty set so last_refresh advances. Returns the number of
// pairs collected this cycle.
func (s *RatesService) Refresh(ctx context.Context, onlySource string) (int, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, ErrRefreshInFlight
	}
	defer s.inFlight.Store(false)

	acc := make(map[string]domain.Quote)
	attempted := 0
	for _, src := range s.sources {
		if onlySource != "" && !strings.EqualFold(src.Name(), onlySource) {
			continue
		}
		attempted++
		quotes, err := src.Fetch(ctx)
		if err != nil {
			s.metrics.SourceFailure(src.Name())
			s.log.Warn("source_fetch_failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		for key, q := range quotes {
			acc[key] = q
		}
		s.log.Info("source_fetched", zap.String("source", src.Name()), zap.Int("pairs", len(quotes)))
	}
	if onlySource != "" && attempted == 0 {
		return 0, fmt.Errorf("%w: unknown source %q", domain.ErrValidation, onlySource)
	}

	if err := s.store.Merge(ctx, acc); err != nil {
		s.metrics.RefreshCycle("failed", 0)
		return 0, err
	}
	for _, q := range acc {
		if err := s.store.AppendHistory(ctx, domain.HistoryRecordFromQuote(q)); err != nil {
			s.log.Warn("history_append_failed", zap.String("pair", q.Pair.Key()), zap.Error(err))
		}
	}

	s.metrics.RefreshCycle("ok", len(acc))
	s.log.Info("refresh_done", zap.Int("pairs", len(acc)))
	return len(acc), nil
}

// GetRate is a read-through lookup surfacing staleness verbatim.
func (s *RatesService) GetRate(ctx context.Context, from, to string) (domain.Quote, error) {
	pair, err := domain.NewPair(from, to)
	if err != nil {
		return domain.Quote{}, err
	}
	if _, err := domain.GetCurrency(pair.From); err != nil {
		return domain.Quote{}, err
	}
	if _, err := domain.GetCurrency(pair.To); err != nil {
		return domain.Quote{}, err
	}
	return s.store.Lookup(ctx, pair)
}

// CachedRates is the display view over the cache: optionally filtered by
// source currency and truncated to the top-N rates in descending order.
type CachedRates struct {
	Quotes      []domain.Quote
	LastRefresh *time.Time
}

func (s *RatesService) CachedRates(ctx context.Context, currency string, top int) (CachedRates, error) {
	cache, err := s.store.Load(ctx)
	if err != nil {
		return CachedRates{}, err
	}

	var filter string
	if currency != "" {
		filter, err = domain.ValidateCode(currency)
		if err != nil {
			return CachedRates{}, err
		}
	}

	out := CachedRates{LastRefresh: cache.LastRefresh}
	for _, q := range cache.Pairs {
		if filter != "" && q.Pair.From != filter {
			continue
		}
		out.Quotes = append(out.Quotes, q)
	}
	sort.Slice(out.Quotes, func(i, j int) bool {
		if out.Quotes[i].Rate != out.Quotes[j].Rate {
			return out.Quotes[i].Rate > out.Quotes[j].Rate
		}
		return out.Quotes[i].Pair.Key() < out.Quotes[j].Pair.Key()
	})
	if top > 0 && len(out.Quotes) > top {
		out.Quotes = out.Quotes[:top]
	}
	return out, nil
}
