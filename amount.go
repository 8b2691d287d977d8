package wave

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/wave-go/apierror"
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// CurrencyDecimals returns the number of minor digits used when formatting
// amounts in currency.
func CurrencyDecimals(currency Currency) int32 {
	switch Currency(strings.ToUpper(string(currency))) {
	case "XOF", "JPY", "KRW":
		return 0
	case "BHD", "IQD", "KWD", "OMR":
		return 3
	default:
		return 2
	}
}

// FormatAmount renders a non-negative decimal string with the number of
// decimals currency uses, rounding half away from zero.
func FormatAmount(amount string, currency Currency) (string, error) {
	amount = strings.TrimSpace(amount)
	if !amountPattern.MatchString(amount) {
		return "", apierror.InvalidFormat("amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", apierror.InvalidFormat("amount")
	}
	places := CurrencyDecimals(currency)
	return d.Round(places).StringFixed(places), nil
}
