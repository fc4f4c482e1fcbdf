// Package moneypkg represents monetary amounts as integer minor units.
//
// All supported currencies have two decimal places, so one unit of Amount
// is one cent. Amounts are exchanged with clients as decimal strings.
package moneypkg

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places of the minor unit.
const Scale = 2

var (
	// ErrInvalidAmount indicates that the amount cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooPrecise indicates that the amount has more decimals than the minor unit.
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
)

// Amount is a signed number of minor currency units.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Parse converts a decimal string such as "12.30" into an Amount.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("moneypkg.MustParse(%q): %v", s, err))
	}

	return a
}

// FromDecimal converts d into minor units, rejecting sub-cent precision.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(Scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, ErrTooPrecise
	}

	if !shifted.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}

	return Amount(shifted.IntPart()), nil
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats the amount with exactly two decimals.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return -a
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a > 0
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return ErrInvalidAmount
		}

		s = n.String()
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// ValidAmount validates that a decimal string is a positive amount
// representable in minor units.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	a, err := Parse(s)

	return err == nil && a.IsPositive()
}
