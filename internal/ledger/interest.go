package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InterestTerms configure accrual for savings and credit accounts. Percent is
// the fractional multiplier applied once per period, so 0.05 means 5%.
type InterestTerms struct {
	Period  int // whole months between accruals
	Percent decimal.Decimal
}

var one = decimal.NewFromInt(1)

func (t InterestTerms) validate() error {
	if t.Period < 1 {
		return fmt.Errorf("%w: period must be a positive number of months, got %d", ErrInvalidInterestParams, t.Period)
	}
	if t.Percent.IsNegative() || t.Percent.GreaterThan(one) {
		return fmt.Errorf("%w: percent must be within [0, 1], got %s", ErrInvalidInterestParams, t.Percent)
	}
	return nil
}

// monthsElapsed counts whole calendar months from since to now. A month in
// progress, i.e. now's day of month is before since's, is not counted.
func monthsElapsed(since, now time.Time) int {
	y1, m1, d1 := since.Date()
	y2, m2, d2 := now.Date()

	months := (y2-y1)*12 + int(m2-m1)
	if d2 < d1 {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// fullPeriods is the number of complete accrual periods between since and now.
func fullPeriods(since, now time.Time, period int) int {
	if period < 1 {
		return 0
	}
	return monthsElapsed(since, now) / period
}

// compound grows base by (1+percent) once per period.
func compound(base, percent decimal.Decimal, periods int) decimal.Decimal {
	for i := 0; i < periods; i++ {
		base = base.Add(base.Mul(percent))
	}
	return base
}
