package types

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217-style three letter currency code
type Currency string

func (c Currency) String() string {
	return string(c)
}

// Observation is a single published reference rate:
// 1 unit of the reference currency buys Rate units of Currency on Date
type Observation struct {
	Date     civil.Date      `json:"date"`
	Currency Currency        `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

// Pair is a requested (from, to) currency pair
type Pair struct {
	From Currency `json:"from"`
	To   Currency `json:"to"`
}

func (p Pair) String() string {
	return p.From.String() + "-" + p.To.String()
}

// CrossRate is the triangulated rate of a pair on a single calendar day
type CrossRate struct {
	Date civil.Date      `json:"date"`
	From Currency        `json:"currency_from"`
	To   Currency        `json:"currency_to"`
	Rate decimal.Decimal `json:"exchange_rate"`
}

// APIKey is a stored access key record. Only the key digest is kept
type APIKey struct {
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"-"`
	ID        uuid.UUID `json:"id"`
}
