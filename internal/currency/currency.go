package currency

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code.
type Code string

const (
	// UAH is the home currency. Rates are expressed as UAH per unit of foreign currency.
	UAH Code = "UAH"
	USD Code = "USD"
	EUR Code = "EUR"

	Home = UAH
)

// Supported lists every currency the ledger accepts.
var Supported = []Code{UAH, USD, EUR}

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
)

// Valid reports whether c is one of the supported currencies.
func (c Code) Valid() bool {
	for _, s := range Supported {
		if c == s {
			return true
		}
	}
	return false
}

func (c Code) String() string {
	return string(c)
}

// Rate is a buy/sell pair quoted in home currency per unit of foreign currency.
type Rate struct {
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// RateSource fetches the rates of all supported foreign currencies in one call.
type RateSource interface {
	FetchRates(ctx context.Context) (map[Code]Rate, error)
}
