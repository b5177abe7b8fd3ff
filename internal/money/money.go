// Package money formats integer minor-unit amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO 4217 currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "ISK": true,
	"JPY": true, "KMF": true, "KRW": true, "PYG": true, "RWF": true,
	"UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true,
	"XPF": true,
}

// threeDecimal lists ISO 4217 currencies with three minor digits.
var threeDecimal = map[string]bool{
	"BHD": true, "IQD": true, "JOD": true, "KWD": true, "LYD": true,
	"OMR": true, "TND": true,
}

// Exponent returns the number of minor digits of currency, defaulting to 2.
func Exponent(currency string) int32 {
	c := strings.ToUpper(currency)
	switch {
	case zeroDecimal[c]:
		return 0
	case threeDecimal[c]:
		return 3
	}
	return 2
}

// Format renders minor units as a fixed-point major-unit string, e.g.
// 123456 USD becomes "1234.56" and -5 JPY becomes "-5".
func Format(minor int64, currency string) string {
	exp := Exponent(currency)
	return decimal.New(minor, -exp).StringFixed(exp)
}
