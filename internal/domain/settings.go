// internal/domain/settings.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PremiumSettings holds the benefits granted to premium accounts.
type PremiumSettings struct {
	TaxExempt       bool `db:"premium_tax_exempt" json:"tax_exempt"`
	RateLimitExempt bool `db:"premium_rate_limit_exempt" json:"rate_limit_exempt"`
}

// TransferSettings is the process-wide transfer policy. It is read fresh on
// every transfer so administrative changes take effect immediately.
type TransferSettings struct {
	TaxEnabled             bool            `db:"tax_enabled" json:"tax_enabled"`
	TaxRate                decimal.Decimal `db:"tax_rate" json:"tax_rate"` // 0 <= rate < 1
	MinAmount              decimal.Decimal `db:"min_amount" json:"min_amount"`
	MaxAmount              decimal.Decimal `db:"max_amount" json:"max_amount"`
	MaxTransfersPerWindow  int             `db:"max_transfers_per_window" json:"max_transfers_per_window"`
	RateLimitWindowMinutes int             `db:"rate_limit_window_minutes" json:"rate_limit_window_minutes"`
	Premium                PremiumSettings `json:"premium_settings"`
}

// RateLimitWindow returns the sliding-window duration.
func (s TransferSettings) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitWindowMinutes) * time.Minute
}

// EffectiveTransferLimit returns the per-window transfer cap for an account,
// doubled for premium accounts when the premium rate-limit benefit is on.
func (s TransferSettings) EffectiveTransferLimit(premium bool) int {
	if premium && s.Premium.RateLimitExempt {
		return s.MaxTransfersPerWindow * 2
	}
	return s.MaxTransfersPerWindow
}
