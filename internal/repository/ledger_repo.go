// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"cryptonel-ledger/internal/domain"
)

// LedgerRepository defines the interface for the append-only transfer
// history. Entries are never edited or deleted.
type LedgerRepository interface {
	// Append adds one ledger entry for a user.
	Append(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
	// RecentByUserID returns a user's most recent entries, newest first,
	// bounded by limit.
	RecentByUserID(ctx context.Context, q DBExecutor, userID string, limit int) ([]domain.LedgerEntry, error)
	// ExistsByTxID reports whether any entry carries the given tx ID. Used
	// to resolve an ambiguous commit outcome.
	ExistsByTxID(ctx context.Context, q DBExecutor, txID string) (bool, error)
}
