package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"valutatrade-service/internal/domain"
)

// LedgerService executes balance-changing operations against wallets. Each
// trade is priced through the rate store, applied to an in-memory copy of
// the portfolio and persisted in a single write, so a failure partway never
// leaves one leg applied. Calls for the same user are serialized by a
// per-user mutex.
type LedgerService struct {
	portfolios PortfolioRepo
	rates      RateStore
	base       string
	log        *zap.Logger
	metrics    MetricsRecorder

	locks sync.Map // userID -> *sync.Mutex
}

type LedgerOption func(*LedgerService)

func WithLedgerMetrics(m MetricsRecorder) LedgerOption {
	return func(s *LedgerService) { s.metrics = m }
}

func NewLedgerService(portfolios PortfolioRepo, rates RateStore, baseCurrency string, log *zap.Logger, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{portfolios: portfolios, rates: rates, base: baseCurrency, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	return s
}

// TradeResult describes one executed buy or sell.
type TradeResult struct {
	Pair      domain.Pair
	Amount    float64
	Rate      float64
	Total     float64 // cost or revenue in the base currency
	Portfolio domain.Portfolio
}

func (s *LedgerService) lockUser(userID int64) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Buy exchanges base currency for amount units of code at the cached rate.
func (s *LedgerService) Buy(ctx context.Context, userID int64, code string, amount float64) (TradeResult, error) {
	res, err := s.trade(ctx, userID, code, amount, true)
	s.logOutcome("BUY", userID, code, amount, err)
	return res, err
}

// Sell exchanges amount units of code back into the base currency.
func (s *LedgerService) Sell(ctx context.Context, userID int64, code string, amount float64) (TradeResult, error) {
	res, err := s.trade(ctx, userID, code, amount, false)
	s.logOutcome("SELL", userID, code, amount, err)
	return res, err
}

func (s *LedgerService) trade(ctx context.Context, userID int64, code string, amount float64, buy bool) (TradeResult, error) {
	code, err := domain.ValidateCode(code)
	if err != nil {
		return TradeResult{}, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return TradeResult{}, err
	}
	if _, err := domain.GetCurrency(code); err != nil {
		return TradeResult{}, err
	}

	pair := domain.Pair{From: code, To: s.base}
	quote, err := s.rates.Lookup(ctx, pair)
	if err != nil {
		return TradeResult{}, err
	}
	total := amount * quote.Rate

	unlock := s.lockUser(userID)
	defer unlock()

	loaded, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return TradeResult{}, err
	}
	// Mutate a copy; the loaded portfolio stays intact when any leg fails.
	p := loaded.Clone()

	baseWallet := p.EnsureWallet(s.base)
	target := p.EnsureWallet(code)

	if buy {
		if baseWallet.Balance < total {
			return TradeResult{}, fmt.Errorf("%w: have %.2f %s, need %.2f %s",
				domain.ErrInsufficientFunds, baseWallet.Balance, s.base, total, s.base)
		}
		if err := baseWallet.Withdraw(total); err != nil {
			return TradeResult{}, err
		}
		if err := target.Deposit(amount); err != nil {
			return TradeResult{}, err
		}
	} else {
		if err := target.Withdraw(amount); err != nil {
			return TradeResult{}, err
		}
		if err := baseWallet.Deposit(total); err != nil {
			return TradeResult{}, err
		}
	}

	if err := s.portfolios.Save(ctx, p); err != nil {
		return TradeResult{}, err
	}
	return TradeResult{Pair: pair, Amount: amount, Rate: quote.Rate, Total: total, Portfolio: p}, nil
}

func (s *LedgerService) loadOrCreate(ctx context.Context, userID int64) (domain.Portfolio, error) {
	p, err := s.portfolios.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewPortfolio(userID), nil
	}
	if err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

// Position is one wallet valued in the view's base currency.
type Position struct {
	Code    string
	Balance float64
	Value   float64
}

// PortfolioView prices every wallet through the cache. The identity pair
// values at 1.0; any other unpriceable wallet surfaces its lookup error.
type PortfolioView struct {
	UserID    int64
	Base      string
	Positions []Position
	Total     float64
}

func (s *LedgerService) Portfolio(ctx context.Context, userID int64, base string) (PortfolioView, error) {
	if base == "" {
		base = s.base
	}
	base, err := domain.ValidateCode(base)
	if err != nil {
		return PortfolioView{}, err
	}
	if _, err := domain.GetCurrency(base); err != nil {
		return PortfolioView{}, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	p, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return PortfolioView{}, err
	}

	view := PortfolioView{UserID: userID, Base: base}
	for _, code := range sortedWalletCodes(p) {
		w := p.Wallets[code]
		value := w.Balance
		if code != base {
			quote, err := s.rates.Lookup(ctx, domain.Pair{From: code, To: base})
			if err != nil {
				return PortfolioView{}, err
			}
			value = w.Balance * quote.Rate
		}
		view.Positions = append(view.Positions, Position{Code: code, Balance: w.Balance, Value: value})
		view.Total += value
	}
	return view, nil
}

func (s *LedgerService) logOutcome(op string, userID int64, code string, amount float64, err error) {
	fields := []zap.Field{
		zap.String("action", op),
		zap.Int64("user_id", userID),
		zap.String("currency", code),
		zap.Float64("amount", amount),
	}
	if err != nil {
		s.metrics.LedgerOp(op, "error")
		s.log.Info("ledger_action", append(fields, zap.String("result", "ERROR"), zap.Error(err))...)
		return
	}
	s.metrics.LedgerOp(op, "ok")
	s.log.Info("ledger_action", append(fields, zap.String("result", "OK"))...)
}

func sortedWalletCodes(p domain.Portfolio) []string {
	codes := make([]string, 0, len(p.Wallets))
	for code := range p.Wallets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
