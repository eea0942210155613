// internal/repository/postgres/settings_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/repository"
)

// SettingsRepository implements repository.SettingsRepository for
// PostgreSQL. The transfer_settings table holds a single row that
// administrators edit directly; every transfer reads it fresh.
type SettingsRepository struct{}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) repository.SettingsRepository {
	return &SettingsRepository{}
}

// GetTransferSettings reads the current transfer policy.
func (r *SettingsRepository) GetTransferSettings(ctx context.Context, q repository.DBExecutor) (domain.TransferSettings, error) {
	var row struct {
		TaxEnabled             bool            `db:"tax_enabled"`
		TaxRate                decimal.Decimal `db:"tax_rate"`
		MinAmount              decimal.Decimal `db:"min_amount"`
		MaxAmount              decimal.Decimal `db:"max_amount"`
		MaxTransfersPerWindow  int             `db:"max_transfers_per_window"`
		RateLimitWindowMinutes int             `db:"rate_limit_window_minutes"`
		PremiumTaxExempt       bool            `db:"premium_tax_exempt"`
		PremiumRateLimitExempt bool            `db:"premium_rate_limit_exempt"`
	}

	query := `
		SELECT tax_enabled, tax_rate, min_amount, max_amount,
		       max_transfers_per_window, rate_limit_window_minutes,
		       premium_tax_exempt, premium_rate_limit_exempt
		FROM transfer_settings
		WHERE id = 1`
	if err := q.GetContext(ctx, &row, query); err != nil {
		return domain.TransferSettings{}, fmt.Errorf("failed to read transfer settings: %w", err)
	}

	return domain.TransferSettings{
		TaxEnabled:             row.TaxEnabled,
		TaxRate:                row.TaxRate,
		MinAmount:              row.MinAmount,
		MaxAmount:              row.MaxAmount,
		MaxTransfersPerWindow:  row.MaxTransfersPerWindow,
		RateLimitWindowMinutes: row.RateLimitWindowMinutes,
		Premium: domain.PremiumSettings{
			TaxExempt:       row.PremiumTaxExempt,
			RateLimitExempt: row.PremiumRateLimitExempt,
		},
	}, nil
}
