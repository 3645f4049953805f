package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
	"valutatrade-service/internal/infrastructure/httpx"
)

var _ application.RateSource = (*CoinGecko)(nil)

// CoinGecko fetches crypto quotes versus one fixed base fiat currency for a
// fixed list of assets. No credential is required.
type CoinGecko struct {
	BaseURL      string
	BaseCurrency string
	Timeout      time.Duration
	Client       *httpx.Client

	assets map[string]string // symbol -> provider asset id
}

func NewCoinGecko(baseURL, baseCurrency string, timeout time.Duration, client *httpx.Client) *CoinGecko {
	if client == nil {
		client = &httpx.Client{}
	}
	return &CoinGecko{
		BaseURL:      baseURL,
		BaseCurrency: strings.ToUpper(baseCurrency),
		Timeout:      timeout,
		Client:       client,
		assets: map[string]string{
			"BTC": "bitcoin",
			"ETH": "ethereum",
			"SOL": "solana",
		},
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Fetch(ctx context.Context) (map[string]domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	ids := make([]string, 0, len(c.assets))
	for _, id := range c.assets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, &domain.SourceError{Source: c.Name(), Cause: fmt.Errorf("invalid base url: %w", err)}
	}
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.ToLower(c.BaseCurrency))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.SourceError{Source: c.Name(), Cause: err}
	}

	// One price object per asset id, keyed by vs currency.
	var body map[string]map[string]float64
	if err := c.Client.DoJSON(ctx, req, &body); err != nil {
		return nil, &domain.SourceError{Source: c.Name(), Cause: err}
	}

	observedAt := time.Now().UTC()
	vs := strings.ToLower(c.BaseCurrency)
	quotes := make(map[string]domain.Quote)
	for symbol, id := range c.assets {
		prices, ok := body[id]
		if !ok {
			continue
		}
		rate, ok := prices[vs]
		if !ok || rate <= 0 {
			continue
		}
		pair := domain.Pair{From: symbol, To: c.BaseCurrency}
		quotes[pair.Key()] = domain.Quote{
			Pair:      pair,
			Rate:      rate,
			UpdatedAt: observedAt,
			Source:    "CoinGecko",
			Meta:      map[string]any{"raw_id": id},
		}
	}
	return quotes, nil
}
