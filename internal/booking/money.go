package booking

import "github.com/shopspring/decimal"

// tokenRate is the share of the cost paid up front to secure a booking.
const tokenRate = 0.10

// TokenAmount returns the token prepayment for cost. The result is not rounded.
func TokenAmount(cost float64) float64 {
	return cost * tokenRate
}

// DisplayAmount formats v with two decimals for presentation.
func DisplayAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// LedgerAmount is v rounded to cents, as recorded for a charge.
func LedgerAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
