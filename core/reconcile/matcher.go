package reconcile

import (
	"time"

	"payroll-monitor/core/records"

	"github.com/shopspring/decimal"
)

var (
	exactTolerance = decimal.New(1, -2)
	closeRatio     = decimal.New(5, -1)
)

// Normalize converts a raw smallest-unit amount into token units.
func Normalize(raw decimal.Decimal, decimals int32) decimal.Decimal {
	return raw.Shift(-decimals)
}

// ClassifyFit compares an actual amount with the expected one. Both bounds are strict:
// a difference of exactly 0.01 is not exact, and a difference of exactly half the
// expected amount is not close.
func ClassifyFit(actual, expected decimal.Decimal) Fit {
	diff := actual.Sub(expected).Abs()
	if diff.LessThan(exactTolerance) {
		return FitExact
	}
	if diff.LessThan(expected.Mul(closeRatio)) {
		return FitClose
	}
	return FitNone
}

// HasAmountDifference reports whether actual deviates from expected by more than 0.01.
func HasAmountDifference(actual, expected decimal.Decimal) bool {
	return actual.Sub(expected).Abs().GreaterThan(exactTolerance)
}

// SameMonth reports whether t falls in the calendar month and year of now,
// evaluated in now's location.
func SameMonth(t, now time.Time) bool {
	local := t.In(now.Location())
	return local.Year() == now.Year() && local.Month() == now.Month()
}

// SelectMatch picks the best incoming transfer for address. Transfers are
// considered in the given order and the first one in each (bucket, fit) cell
// is kept. It returns nil when no transfer fits.
func SelectMatch(transfers []Transfer, address string, expected decimal.Decimal, now time.Time, decimals int32) *Match {
	var cells [4]*Match
	key := records.Key(address)

	for _, tx := range transfers {
		if records.Key(tx.Recipient) != key {
			continue
		}
		amount := Normalize(tx.RawAmount, decimals)
		fit := ClassifyFit(amount, expected)
		if fit == FitNone {
			continue
		}
		bucket := BucketNonCurrent
		if SameMonth(tx.BlockTime, now) {
			bucket = BucketCurrent
		}
		slot := priority(bucket, fit)
		if cells[slot] == nil {
			cells[slot] = &Match{Transfer: tx, Amount: amount, Bucket: bucket, Fit: fit}
		}
	}

	for _, m := range cells {
		if m != nil {
			return m
		}
	}
	return nil
}

// priority orders cells current+exact, current+close, non-current+exact, non-current+close.
func priority(b Bucket, f Fit) int {
	slot := int(b) * 2
	if f == FitClose {
		slot++
	}
	return slot
}

// DeriveStatus maps a matched transfer's month bucket and amount difference to a status.
func DeriveStatus(isCurrentMonth, hasAmountDifference bool) records.Status {
	switch {
	case isCurrentMonth && !hasAmountDifference:
		return records.StatusConfirmed
	case isCurrentMonth:
		return records.StatusAmountDifference
	case !hasAmountDifference:
		return records.StatusNonCurrentMonthConfirmed
	default:
		return records.StatusNonCurrentMonthDifference
	}
}
