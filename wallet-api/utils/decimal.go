package utils

import (
	"github.com/shopspring/decimal"
)

// Utilisation returns used/limit rounded to places. A zero limit reports zero.
func Utilisation(used, limit string, places int32) (decimal.Decimal, error) {
	u, err := decimal.NewFromString(used)
	if err != nil {
		return decimal.Zero, WrapError(ErrInvalidAmount, err)
	}
	l, err := decimal.NewFromString(limit)
	if err != nil {
		return decimal.Zero, WrapError(ErrInvalidAmount, err)
	}
	if l.IsZero() {
		return decimal.Zero, nil
	}
	return u.DivRound(l, places), nil
}

// Remaining is limit-used, floored at zero.
func Remaining(used, limit string) (decimal.Decimal, error) {
	u, err := decimal.NewFromString(used)
	if err != nil {
		return decimal.Zero, WrapError(ErrInvalidAmount, err)
	}
	l, err := decimal.NewFromString(limit)
	if err != nil {
		return decimal.Zero, WrapError(ErrInvalidAmount, err)
	}
	return decimal.Max(l.Sub(u), decimal.Zero), nil
}
