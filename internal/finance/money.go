// Package finance implements the document calculation and payment allocation
// engine. Every operation is a pure function over its inputs: no storage, no
// network, no shared state, safe for concurrent use.
package finance

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits carried by every monetary
// amount the engine returns.
const MoneyPlaces = 2

// Default rates applied by callers when a request does not carry one. They
// are plain defaults surfaced through configuration, never ambient state:
// every engine operation takes its rate explicitly.
var (
	DefaultVATRate         = decimal.NewFromInt(24)
	DefaultWithholdingRate = decimal.NewFromInt(20)
)

var (
	// ErrInvalidQuantity is returned for a negative line quantity.
	ErrInvalidQuantity = errors.New("finance: quantity must not be negative")
	// ErrInvalidRate is returned when a gross-to-net rate is -100% or below.
	ErrInvalidRate = errors.New("finance: rate must be greater than -100")
	// ErrInvalidPayment is returned for a negative payment amount.
	ErrInvalidPayment = errors.New("finance: payment amount must not be negative")
)

var oneHundred = decimal.NewFromInt(100)

// Round normalises an amount to cents using half-away-from-zero rounding.
// Every monetary field passes through here before it leaves the engine, so
// downstream sums are built from already-rounded figures. The per-line
// rounding cadence is load-bearing: published totals depend on it.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}
