package jsonstore

import (
	"context"
	"fmt"
	"sync"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

var _ application.PortfolioRepo = (*PortfolioRepo)(nil)

// PortfolioRepo persists every user's portfolio in one JSON document, one
// entry per user. Saves rewrite the whole document atomically.
type PortfolioRepo struct {
	path string
	mu   sync.Mutex
}

func NewPortfolioRepo(path string) *PortfolioRepo {
	return &PortfolioRepo{path: path}
}

type walletDoc struct {
	Balance float64 `json:"balance"`
}

type portfolioDoc struct {
	UserID  int64                `json:"user_id"`
	Wallets map[string]walletDoc `json:"wallets"`
}

func (r *PortfolioRepo) load() []portfolioDoc {
	var docs []portfolioDoc
	readJSON(r.path, &docs)
	return docs
}

func (r *PortfolioRepo) GetByUser(_ context.Context, userID int64) (domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range r.load() {
		if doc.UserID != userID {
			continue
		}
		p := domain.NewPortfolio(userID)
		for code, w := range doc.Wallets {
			p.Wallets[code] = &domain.Wallet{CurrencyCode: code, Balance: w.Balance}
		}
		return p, nil
	}
	return domain.Portfolio{}, fmt.Errorf("%w: portfolio for user %d", domain.ErrNotFound, userID)
}

func (r *PortfolioRepo) Save(_ context.Context, p domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := portfolioDoc{UserID: p.UserID, Wallets: map[string]walletDoc{}}
	for code, w := range p.Wallets {
		doc.Wallets[code] = walletDoc{Balance: w.Balance}
	}

	docs := r.load()
	replaced := false
	for i := range docs {
		if docs[i].UserID == p.UserID {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, doc)
	}
	return writeAtomic(r.path, docs)
}
