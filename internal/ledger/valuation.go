package ledger

import (
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

// Valuation is the pair of frozen display-currency amounts stored on a
// transaction at entry/edit time.
type Valuation struct {
	KRWAmount decimal.Decimal
	TRYAmount *decimal.Decimal
}

// Valuate computes the stored KRW and TRY amounts for a transaction.
//
// The KRW amount is original × rateKRW rounded to whole won, unless the
// caller supplies a manual override, which is stored verbatim without
// re-validating the multiplicative relationship. The TRY amount is the
// original amount exactly when the source currency is already TRY
// (rate is definitionally 1, no lookup involved), otherwise
// original × rateTRY rounded to kuruş. A zero rateTRY yields no TRY
// amount rather than a zero one.
func Valuate(original decimal.Decimal, currency string, rateKRW, rateTRY decimal.Decimal, overrideKRW *decimal.Decimal) Valuation {
	v := Valuation{}

	if overrideKRW != nil {
		v.KRWAmount = *overrideKRW
	} else {
		v.KRWAmount = original.Mul(rateKRW).Round(0)
	}

	if currency == core.SecondaryCurrency {
		exact := original
		v.TRYAmount = &exact
	} else if rateTRY.IsPositive() {
		converted := original.Mul(rateTRY).Round(2)
		v.TRYAmount = &converted
	}

	return v
}

// DisplayAmount returns a transaction's value in the requested display
// currency. This single selection rule is shared by the dashboard, the
// budget views and the shared report:
//
//	KRW → stored KRW amount
//	TRY → stored TRY amount, else the original amount when the source
//	      currency is already TRY, else zero
//
// The zero branch means a transaction predating the TRY valuation whose
// source currency is not TRY contributes nothing to TRY aggregates.
// That undercount is the historical behavior and is kept as is, since
// recomputing from live rates would change old report totals.
func DisplayAmount(t core.Transaction, currency core.DisplayCurrency) decimal.Decimal {
	if currency == core.DisplayKRW {
		return t.KRWAmount
	}
	if t.TRYAmount != nil {
		return *t.TRYAmount
	}
	if t.Currency == core.SecondaryCurrency {
		return t.OriginalAmount
	}
	return decimal.Zero
}
