// internal/domain/amount.go
package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/util"
)

// AmountPrecision is the number of fractional digits CRN amounts carry.
const AmountPrecision = 8

// amountPattern accepts plain decimal forms like "1", "1.5" and "0.75".
// Exponents, signs and leading zeros ("007") are rejected.
var amountPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// ParseAmount parses a user-supplied amount string into a positive decimal
// normalized to 8 fractional digits. A comma is accepted as the decimal
// separator. Inputs with more than 8 fractional digits are rounded
// half-away-from-zero to the canonical 8-digit representation, never
// silently truncated.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")

	if !amountPattern.MatchString(s) {
		return decimal.Zero, util.ErrInvalidAmountFormat
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, util.ErrInvalidAmountFormat
	}
	if !amount.IsPositive() {
		return decimal.Zero, util.ErrInvalidAmountFormat
	}

	// decimal.Round rounds half away from zero.
	return amount.Round(AmountPrecision), nil
}

// FormatAmount renders an amount in the canonical 8-fractional-digit form,
// e.g. "1.50000000".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPrecision)
}
