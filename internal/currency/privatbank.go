package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRatesURL is the PrivatBank public cash exchange rates endpoint.
const DefaultRatesURL = "https://api.privatbank.ua/p24api/pubinfo?json&exchange&coursid=5"

// PrivatBankSource fetches rates from the PrivatBank public API.
type PrivatBankSource struct {
	url    string
	client *http.Client
}

type privatBankRate struct {
	Currency     string          `json:"ccy"`
	BaseCurrency string          `json:"base_ccy"`
	Buy          decimal.Decimal `json:"buy"`
	Sale         decimal.Decimal `json:"sale"`
}

// NewPrivatBankSource creates a rate source. An empty url selects DefaultRatesURL.
func NewPrivatBankSource(url string, client *http.Client) *PrivatBankSource {
	if url == "" {
		url = DefaultRatesURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PrivatBankSource{url: url, client: client}
}

// FetchRates implements RateSource. Entries for unsupported currencies or for
// another base currency are ignored.
func (s *PrivatBankSource) FetchRates(ctx context.Context) (map[Code]Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint returned %s", resp.Status)
	}

	var payload []privatBankRate
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	rates := make(map[Code]Rate, len(payload))
	for _, item := range payload {
		code := Code(item.Currency)
		if code == Home || !code.Valid() {
			continue
		}
		if item.BaseCurrency != "" && Code(item.BaseCurrency) != Home {
			continue
		}
		rates[code] = Rate{Buy: item.Buy, Sell: item.Sale}
	}
	return rates, nil
}
