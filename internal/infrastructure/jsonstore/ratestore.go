package jsonstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

var _ application.RateStore = (*RateStore)(nil)

// RateStore keeps the latest quote per pair in one JSON document, replaced
// wholesale on every merge, plus an append-only history document. It is the
// only writer of both files within the process.
type RateStore struct {
	cachePath   string
	historyPath string
	ttl         time.Duration
	retention   time.Duration

	mu  sync.Mutex
	now func() time.Time
}

type Option func(*RateStore)

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *RateStore) { s.now = now }
}

func New(cachePath, historyPath string, ttl, retention time.Duration, opts ...Option) *RateStore {
	s := &RateStore{
		cachePath:   cachePath,
		historyPath: historyPath,
		ttl:         ttl,
		retention:   retention,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type quoteDoc struct {
	Rate      float64        `json:"rate"`
	UpdatedAt time.Time      `json:"updated_at"`
	Source    string         `json:"source"`
	Meta      map[string]any `json:"meta"`
}

type cacheDoc struct {
	Pairs       map[string]quoteDoc `json:"pairs"`
	LastRefresh *time.Time          `json:"last_refresh"`
}

type historyRecordDoc struct {
	ID           string         `json:"id"`
	FromCurrency string         `json:"from_currency"`
	ToCurrency   string         `json:"to_currency"`
	Rate         float64        `json:"rate"`
	Timestamp    time.Time      `json:"timestamp"`
	Source       string         `json:"source"`
	Meta         map[string]any `json:"meta"`
}

type historyDoc struct {
	Records []historyRecordDoc `json:"records"`
}

func (s *RateStore) readCache() cacheDoc {
	doc := cacheDoc{Pairs: map[string]quoteDoc{}}
	if !readJSON(s.cachePath, &doc) {
		return cacheDoc{Pairs: map[string]quoteDoc{}}
	}
	if doc.Pairs == nil {
		doc.Pairs = map[string]quoteDoc{}
	}
	return doc
}

// Load returns the full cache view. Read failures yield an empty cache.
func (s *RateStore) Load(_ context.Context) (domain.RateCache, error) {
	doc := s.readCache()
	cache := domain.NewRateCache()
	cache.LastRefresh = doc.LastRefresh
	for key, q := range doc.Pairs {
		pair, ok := domain.ParsePairKey(key)
		if !ok {
			continue
		}
		cache.Pairs[key] = domain.Quote{
			Pair:      pair,
			Rate:      q.Rate,
			UpdatedAt: q.UpdatedAt,
			Source:    q.Source,
			Meta:      q.Meta,
		}
	}
	return cache, nil
}

// Lookup returns the cached quote for pair, enforcing the freshness
// ceiling configured at construction.
func (s *RateStore) Lookup(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	cache, err := s.Load(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	q, ok := cache.Pairs[pair.Key()]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, pair)
	}
	if q.Age(s.now()) > s.ttl {
		return domain.Quote{}, fmt.Errorf("%w: %s updated at %s", domain.ErrRateStale, pair, q.UpdatedAt.Format(time.RFC3339))
	}
	return q, nil
}

// Merge unions quotes into the cache document. Pairs absent from quotes are
// kept until their last observation exceeds the retention ceiling, so a
// source outage does not erase previously known rates. last_refresh always
// advances, even for an empty set.
func (s *RateStore) Merge(_ context.Context, quotes map[string]domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	doc := s.readCache()

	for key, q := range doc.Pairs {
		if _, refreshed := quotes[key]; refreshed {
			continue
		}
		if now.Sub(q.UpdatedAt) > s.retention {
			delete(doc.Pairs, key)
		}
	}
	for key, q := range quotes {
		doc.Pairs[key] = quoteDoc{
			Rate:      q.Rate,
			UpdatedAt: q.UpdatedAt,
			Source:    q.Source,
			Meta:      metaOrEmpty(q.Meta),
		}
	}

	// last_refresh is monotonically non-decreasing across writes.
	last := now
	if doc.LastRefresh != nil && doc.LastRefresh.After(now) {
		last = *doc.LastRefresh
	}
	doc.LastRefresh = &last

	return writeAtomic(s.cachePath, doc)
}

// AppendHistory adds one record to the log. Out-of-order timestamps are
// stored as-is; nothing is deduplicated or pruned here.
func (s *RateStore) AppendHistory(_ context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := historyDoc{}
	readJSON(s.historyPath, &doc)
	doc.Records = append(doc.Records, historyRecordDoc{
		ID:           rec.ID,
		FromCurrency: rec.Pair.From,
		ToCurrency:   rec.Pair.To,
		Rate:         rec.Rate,
		Timestamp:    rec.Timestamp,
		Source:       rec.Source,
		Meta:         metaOrEmpty(rec.Meta),
	})
	return writeAtomic(s.historyPath, doc)
}

func metaOrEmpty(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
