package application

import (
	"context"
	"fmt"
	"time"

	"valutatrade-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeSource struct {
	name   string
	quotes map[string]domain.Quote
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context) (map[string]domain.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

type fakeRateStore struct {
	quotes   map[string]domain.Quote
	stale    map[string]bool
	mergeErr error
	merges   []map[string]domain.Quote
	history  []domain.HistoryRecord
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{quotes: map[string]domain.Quote{}, stale: map[string]bool{}}
}

func (f *fakeRateStore) Load(context.Context) (domain.RateCache, error) {
	cache := domain.NewRateCache()
	for k, q := range f.quotes {
		cache.Pairs[k] = q
	}
	return cache, nil
}

func (f *fakeRateStore) Lookup(_ context.Context, pair domain.Pair) (domain.Quote, error) {
	key := pair.Key()
	q, ok := f.quotes[key]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, pair)
	}
	if f.stale[key] {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrRateStale, pair)
	}
	return q, nil
}

func (f *fakeRateStore) Merge(_ context.Context, quotes map[string]domain.Quote) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	merged := map[string]domain.Quote{}
	for k, q := range quotes {
		f.quotes[k] = q
		merged[k] = q
	}
	f.merges = append(f.merges, merged)
	return nil
}

func (f *fakeRateStore) AppendHistory(_ context.Context, rec domain.HistoryRecord) error {
	f.history = append(f.history, rec)
	return nil
}

type fakePortfolioRepo struct {
	store   map[int64]domain.Portfolio
	saveErr error
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{store: map[int64]domain.Portfolio{}}
}

func (f *fakePortfolioRepo) GetByUser(_ context.Context, userID int64) (domain.Portfolio, error) {
	p, ok := f.store[userID]
	if !ok {
		return domain.Portfolio{}, fmt.Errorf("%w: portfolio for user %d", domain.ErrNotFound, userID)
	}
	return p.Clone(), nil
}

func (f *fakePortfolioRepo) Save(_ context.Context, p domain.Portfolio) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.store[p.UserID] = p.Clone()
	return nil
}

func (f *fakePortfolioRepo) balance(userID int64, code string) float64 {
	p, ok := f.store[userID]
	if !ok {
		return 0
	}
	w, ok := p.Wallets[code]
	if !ok {
		return 0
	}
	return w.Balance
}

type fakeUserRepo struct {
	users  map[string]domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	u, ok := f.users[username]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %q", domain.ErrNotFound, username)
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	if _, exists := f.users[u.Username]; exists {
		return domain.User{}, ErrUserExists
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.Username] = u
	return u, nil
}

type fakeIdem struct {
	reserved map[string]bool
	err      error
}

func newFakeIdem() *fakeIdem { return &fakeIdem{reserved: map[string]bool{}} }

func (f *fakeIdem) TryReserve(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.reserved[key] {
		return false, nil
	}
	f.reserved[key] = true
	return true, nil
}

func quoteAt(from, to string, rate float64, at time.Time, source string) domain.Quote {
	return domain.Quote{
		Pair:      domain.Pair{From: from, To: to},
		Rate:      rate,
		UpdatedAt: at,
		Source:    source,
	}
}
