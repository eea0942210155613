// internal/repository/settings_repo.go
package repository

import (
	"context"

	"cryptonel-ledger/internal/domain"
)

// SettingsRepository provides the current transfer policy. Callers read it
// fresh per transfer; implementations must not cache across requests.
type SettingsRepository interface {
	GetTransferSettings(ctx context.Context, q DBExecutor) (domain.TransferSettings, error)
}
