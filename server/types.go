package server

import "github.com/sig-0/fxcross/storage/types"

type CurrenciesResponse struct {
	Results []types.Currency `json:"results"`
}

// ExchangeResponse is a single cross rate row
type ExchangeResponse struct {
	Date         string  `json:"date"`
	CurrencyFrom string  `json:"currency_from"`
	CurrencyTo   string  `json:"currency_to"`
	ExchangeRate float64 `json:"exchange_rate"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// newExchangeResponses converts the generated rows to their response form
func newExchangeResponses(rates []*types.CrossRate) []ExchangeResponse {
	out := make([]ExchangeResponse, 0, len(rates))

	for _, r := range rates {
		out = append(out, ExchangeResponse{
			Date:         r.Date.String(),
			CurrencyFrom: r.From.String(),
			CurrencyTo:   r.To.String(),
			ExchangeRate: r.Rate.InexactFloat64(),
		})
	}

	return out
}
