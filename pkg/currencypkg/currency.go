// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "github.com/go-playground/validator/v10"

// Constants for all supported currencies.
const (
	ZMW = "ZMW"
	USD = "USD"
	GBP = "GBP"
	ZAR = "ZAR"
)

// Default is used when a profile does not specify a currency.
const Default = ZMW

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{
	ZMW,
	USD,
	GBP,
	ZAR,
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}

	return false
}

// ValidCurrency validates whether the currency is supported.
//
// Empty values pass so the tag can be combined with omitempty.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return c == "" || IsSupportedCurrency(c)
	}

	return false
}
