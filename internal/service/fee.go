// internal/service/fee.go
package service

import (
	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
)

// ComputeFee returns the fee charged on a transfer and the net amount the
// recipient receives. Premium accounts are exempt while the premium tax
// benefit is enabled. Pure function; all arithmetic is fixed-point with
// 8-digit precision, rounded half away from zero.
func ComputeFee(amount decimal.Decimal, isPremium bool, settings domain.TransferSettings) (fee, net decimal.Decimal) {
	if !settings.TaxEnabled {
		return decimal.Zero, amount
	}
	if isPremium && settings.Premium.TaxExempt {
		return decimal.Zero, amount
	}
	fee = amount.Mul(settings.TaxRate).Round(domain.AmountPrecision)
	return fee, amount.Sub(fee)
}
