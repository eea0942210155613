// internal/service/fee_test.go
package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cryptonel-ledger/internal/domain"
)

func feeSettings(taxEnabled bool, rate string, premiumExempt bool) domain.TransferSettings {
	return domain.TransferSettings{
		TaxEnabled: taxEnabled,
		TaxRate:    decimal.RequireFromString(rate),
		Premium: domain.PremiumSettings{
			TaxExempt: premiumExempt,
		},
	}
}

func TestComputeFeeStandardRate(t *testing.T) {
	amount := decimal.RequireFromString("100")

	fee, net := ComputeFee(amount, false, feeSettings(true, "0.01", true))

	assert.Equal(t, "1.00000000", domain.FormatAmount(fee))
	assert.Equal(t, "99.00000000", domain.FormatAmount(net))
}

func TestComputeFeePremiumExempt(t *testing.T) {
	amount := decimal.RequireFromString("100")

	fee, net := ComputeFee(amount, true, feeSettings(true, "0.01", true))

	assert.True(t, fee.IsZero())
	assert.Equal(t, "100.00000000", domain.FormatAmount(net))
}

func TestComputeFeePremiumWithoutExemptionPays(t *testing.T) {
	amount := decimal.RequireFromString("100")

	fee, net := ComputeFee(amount, true, feeSettings(true, "0.01", false))

	assert.Equal(t, "1.00000000", domain.FormatAmount(fee))
	assert.Equal(t, "99.00000000", domain.FormatAmount(net))
}

func TestComputeFeeTaxDisabled(t *testing.T) {
	amount := decimal.RequireFromString("42.5")

	fee, net := ComputeFee(amount, false, feeSettings(false, "0.01", true))

	assert.True(t, fee.IsZero())
	assert.True(t, net.Equal(amount))
}

func TestComputeFeeRoundsToEightDigits(t *testing.T) {
	amount := decimal.RequireFromString("0.33333333")

	fee, net := ComputeFee(amount, false, feeSettings(true, "0.01", true))

	assert.Equal(t, "0.00333333", domain.FormatAmount(fee))
	assert.Equal(t, "0.33000000", domain.FormatAmount(net))
}

func TestComputeFeeDeterministic(t *testing.T) {
	amount := decimal.RequireFromString("123.456789")
	settings := feeSettings(true, "0.015", true)

	firstFee, firstNet := ComputeFee(amount, false, settings)
	for i := 0; i < 1000; i++ {
		fee, net := ComputeFee(amount, false, settings)
		assert.True(t, fee.Equal(firstFee))
		assert.True(t, net.Equal(firstNet))
	}
}

func TestComputeFeeConservesGrossMinusTwiceFee(t *testing.T) {
	// Sender pays amount + fee, recipient receives amount - fee; net plus
	// fee must always rebuild the amount to 8 digits exactly.
	amount := decimal.RequireFromString("57.12345678")

	fee, net := ComputeFee(amount, false, feeSettings(true, "0.01", true))

	assert.True(t, net.Add(fee).Equal(amount))
}
