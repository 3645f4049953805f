package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"valutatrade-service/internal/domain"
)

func newTestLedger(store *fakeRateStore, repo *fakePortfolioRepo) *LedgerService {
	return NewLedgerService(repo, store, "USD", nil)
}

func seedUSD(repo *fakePortfolioRepo, userID int64, balance float64) {
	p := domain.NewPortfolio(userID)
	p.Wallets["USD"] = &domain.Wallet{CurrencyCode: "USD", Balance: balance}
	repo.store[userID] = p
}

func Test_Buy_DebitsUSDAndCreditsTarget(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	seedUSD(repo, 1, 1000)
	svc := newTestLedger(store, repo)

	res, err := svc.Buy(context.Background(), 1, "BTC", 0.01)
	require.NoError(t, err)
	require.InDelta(t, 500, res.Total, 1e-9)
	require.InDelta(t, 500, repo.balance(1, "USD"), 1e-9)
	require.InDelta(t, 0.01, repo.balance(1, "BTC"), 1e-9)

	// Not enough USD left for the second trade; both wallets stay put.
	_, err = svc.Buy(context.Background(), 1, "BTC", 0.02)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.InDelta(t, 500, repo.balance(1, "USD"), 1e-9)
	require.InDelta(t, 0.01, repo.balance(1, "BTC"), 1e-9)
}

func Test_BuyThenSell_RestoresBalance(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	seedUSD(repo, 1, 1000)
	svc := newTestLedger(store, repo)

	_, err := svc.Buy(context.Background(), 1, "BTC", 0.01)
	require.NoError(t, err)
	_, err = svc.Sell(context.Background(), 1, "BTC", 0.01)
	require.NoError(t, err)

	require.InDelta(t, 1000, repo.balance(1, "USD"), 1e-9)
	require.InDelta(t, 0, repo.balance(1, "BTC"), 1e-9)
}

func Test_Sell_InsufficientTargetBalance(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	seedUSD(repo, 1, 1000)
	svc := newTestLedger(store, repo)

	_, err := svc.Sell(context.Background(), 1, "BTC", 0.5)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.InDelta(t, 1000, repo.balance(1, "USD"), 1e-9)
}

func Test_Trade_ValidationBeforeAnyIO(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	repo := newFakePortfolioRepo()
	svc := newTestLedger(store, repo)

	_, err := svc.Buy(context.Background(), 1, "BTC", -1)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Buy(context.Background(), 1, "??", 1)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Buy(context.Background(), 1, "XYZ", 1)
	require.ErrorIs(t, err, domain.ErrCurrencyNotFound)
}

func Test_Trade_SurfacesRateErrors(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	repo := newFakePortfolioRepo()
	seedUSD(repo, 1, 1000)
	svc := newTestLedger(store, repo)

	_, err := svc.Buy(context.Background(), 1, "BTC", 0.01)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	store.stale["BTC_USD"] = true
	_, err = svc.Buy(context.Background(), 1, "BTC", 0.01)
	require.ErrorIs(t, err, domain.ErrRateStale)
	require.InDelta(t, 1000, repo.balance(1, "USD"), 1e-9)
}

func Test_Buy_CreatesPortfolioLazily(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	svc := newTestLedger(store, repo)

	// First operation for this user: portfolio comes into existence with
	// zero balances, so any buy fails on funds but not on existence.
	_, err := svc.Buy(context.Background(), 7, "BTC", 0.01)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func Test_Buy_SaveFailureLeavesRepoUntouched(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	seedUSD(repo, 1, 1000)
	repo.saveErr = errors.New("disk full")
	svc := newTestLedger(store, repo)

	_, err := svc.Buy(context.Background(), 1, "BTC", 0.01)
	require.Error(t, err)
	require.InDelta(t, 1000, repo.balance(1, "USD"), 1e-9)
	require.InDelta(t, 0, repo.balance(1, "BTC"), 1e-9)
}

func Test_Portfolio_ValuesThroughCache(t *testing.T) {
	t.Parallel()
	store := newFakeRateStore()
	store.quotes["BTC_USD"] = quoteAt("BTC", "USD", 50000, testTime, "CoinGecko")
	repo := newFakePortfolioRepo()
	p := domain.NewPortfolio(1)
	p.Wallets["USD"] = &domain.Wallet{CurrencyCode: "USD", Balance: 500}
	p.Wallets["BTC"] = &domain.Wallet{CurrencyCode: "BTC", Balance: 0.01}
	repo.store[1] = p
	svc := newTestLedger(store, repo)

	view, err := svc.Portfolio(context.Background(), 1, "")
	require.NoError(t, err)
	require.Equal(t, "USD", view.Base)
	require.Len(t, view.Positions, 2)
	require.InDelta(t, 1000, view.Total, 1e-9)

	// An unpriceable wallet surfaces the lookup failure.
	p.Wallets["ETH"] = &domain.Wallet{CurrencyCode: "ETH", Balance: 1}
	repo.store[1] = p
	_, err = svc.Portfolio(context.Background(), 1, "")
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}
