package domain

import "fmt"

// Currency is static metadata for one supported currency. Kind tells the
// providers apart: fiat rates come from the exchange API, crypto rates from
// the market API.
type Currency struct {
	Code string
	Name string
	Kind CurrencyKind
	// Fiat only.
	IssuingCountry string
	// Crypto only.
	Algorithm string
}

type CurrencyKind string

const (
	CurrencyFiat   CurrencyKind = "fiat"
	CurrencyCrypto CurrencyKind = "crypto"
)

var currencyRegistry = map[string]Currency{
	"USD": {Code: "USD", Name: "US Dollar", Kind: CurrencyFiat, IssuingCountry: "United States"},
	"EUR": {Code: "EUR", Name: "Euro", Kind: CurrencyFiat, IssuingCountry: "Eurozone"},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Kind: CurrencyFiat, IssuingCountry: "United Kingdom"},
	"RUB": {Code: "RUB", Name: "Russian Ruble", Kind: CurrencyFiat, IssuingCountry: "Russia"},
	"BTC": {Code: "BTC", Name: "Bitcoin", Kind: CurrencyCrypto, Algorithm: "SHA-256"},
	"ETH": {Code: "ETH", Name: "Ethereum", Kind: CurrencyCrypto, Algorithm: "Ethash"},
	"SOL": {Code: "SOL", Name: "Solana", Kind: CurrencyCrypto, Algorithm: "PoH"},
}

// GetCurrency resolves a code against the registry.
func GetCurrency(code string) (Currency, error) {
	code, err := ValidateCode(code)
	if err != nil {
		return Currency{}, err
	}
	c, ok := currencyRegistry[code]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %s", ErrCurrencyNotFound, code)
	}
	return c, nil
}

func (c Currency) DisplayInfo() string {
	if c.Kind == CurrencyCrypto {
		return fmt.Sprintf("[CRYPTO] %s - %s (algo: %s)", c.Code, c.Name, c.Algorithm)
	}
	return fmt.Sprintf("[FIAT] %s - %s (issuing: %s)", c.Code, c.Name, c.IssuingCountry)
}
