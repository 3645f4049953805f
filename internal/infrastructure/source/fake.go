package source

import (
	"context"
	"time"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

var _ application.RateSource = (*Fake)(nil)

// Fake serves a fixed rate table; used for local development without
// provider credentials.
type Fake struct {
	BaseCurrency string
	Rates        map[string]float64
}

func NewFake(baseCurrency string) *Fake {
	return &Fake{
		BaseCurrency: baseCurrency,
		Rates: map[string]float64{
			"BTC": 50000.0,
			"ETH": 3000.0,
			"SOL": 20.0,
			"EUR": 1.1,
		},
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Fetch(context.Context) (map[string]domain.Quote, error) {
	now := time.Now().UTC()
	quotes := make(map[string]domain.Quote, len(f.Rates))
	for code, rate := range f.Rates {
		pair := domain.Pair{From: code, To: f.BaseCurrency}
		quotes[pair.Key()] = domain.Quote{
			Pair:      pair,
			Rate:      rate,
			UpdatedAt: now,
			Source:    "Fake",
			Meta:      map[string]any{},
		}
	}
	return quotes, nil
}
