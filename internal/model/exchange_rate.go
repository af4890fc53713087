package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the VES-per-USD conversion factor recorded for one
// calendar date.  Invoice issuance resolves the "rate of the day" as
// the rate with the most recent date on record, which may be older
// than today — see RateRepo.LatestKnown.
//
// Fields:
//  ID   – primary key identifier.
//  Date – calendar date the rate applies to (unique).
//  Rate – bolívares per one US dollar.
type ExchangeRate struct {
	ID   uint64          // exchange_rates.id
	Date time.Time       // exchange_rates.rate_date
	Rate decimal.Decimal // exchange_rates.rate
}

// ToVes converts a USD amount to bolívares at this rate, rounded to
// two decimals.
func (r ExchangeRate) ToVes(amountUsd decimal.Decimal) decimal.Decimal {
	return amountUsd.Mul(r.Rate).Round(2)
}

// ToUsd converts a VES amount to dollars at this rate, rounded to two
// decimals.  A zero rate yields zero rather than dividing by it.
func (r ExchangeRate) ToUsd(amountVes decimal.Decimal) decimal.Decimal {
	if r.Rate.IsZero() {
		return decimal.Zero
	}
	return amountVes.Div(r.Rate).Round(2)
}
