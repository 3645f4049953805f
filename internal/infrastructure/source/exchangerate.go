package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
	"valutatrade-service/internal/infrastructure/httpx"
)

var _ application.RateSource = (*ExchangeRate)(nil)

// ExchangeRate fetches fiat quotes versus one fixed base currency for every
// currency the provider supports. It requires an API key and refuses to be
// constructed without one.
type ExchangeRate struct {
	BaseURL      string
	APIKey       string
	BaseCurrency string
	Timeout      time.Duration
	Client       *httpx.Client
}

func NewExchangeRate(baseURL, apiKey, baseCurrency string, timeout time.Duration, client *httpx.Client) (*ExchangeRate, error) {
	if apiKey == "" {
		return nil, errors.New("exchangerate: API key not found in environment")
	}
	if client == nil {
		client = &httpx.Client{}
	}
	return &ExchangeRate{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		BaseCurrency: strings.ToUpper(baseCurrency),
		Timeout:      timeout,
		Client:       client,
	}, nil
}

func (c *ExchangeRate) Name() string { return "exchangerate" }

type exchangeRateResp struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Rates     map[string]float64 `json:"rates"`
}

func (c *ExchangeRate) Fetch(ctx context.Context) (map[string]domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/latest/%s", strings.TrimRight(c.BaseURL, "/"), c.APIKey, c.BaseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.SourceError{Source: c.Name(), Cause: err}
	}

	var body exchangeRateResp
	if err := c.Client.DoJSON(ctx, req, &body); err != nil {
		return nil, &domain.SourceError{Source: c.Name(), Cause: err}
	}
	if body.Result != "success" {
		cause := fmt.Errorf("unsuccessful response %q", body.Result)
		if body.ErrorType != "" {
			cause = fmt.Errorf("provider error: %s", body.ErrorType)
		}
		return nil, &domain.SourceError{Source: c.Name(), Cause: cause}
	}

	observedAt := time.Now().UTC()
	quotes := make(map[string]domain.Quote)
	for currency, rate := range body.Rates {
		if rate <= 0 {
			continue
		}
		code := strings.ToUpper(currency)
		pair := domain.Pair{From: code, To: c.BaseCurrency}
		quotes[pair.Key()] = domain.Quote{
			Pair:      pair,
			Rate:      rate,
			UpdatedAt: observedAt,
			Source:    "ExchangeRate-API",
			Meta:      map[string]any{},
		}
	}
	return quotes, nil
}
