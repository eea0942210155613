// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/repository"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
type LedgerRepository struct{}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// Append inserts one ledger entry using the provided DBExecutor.
func (r *LedgerRepository) Append(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries
		(tx_id, user_id, type, amount, fee, reason, timestamp, counterparty_id, counterparty_username, counterparty_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.TxID,
		entry.UserID,
		entry.Type,
		entry.Amount,
		entry.Fee,
		entry.Reason,
		entry.Timestamp,
		entry.CounterpartyID,
		entry.CounterpartyUsername,
		entry.CounterpartyAddress,
		entry.Status,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// RecentByUserID returns a user's most recent entries, newest first.
func (r *LedgerRepository) RecentByUserID(ctx context.Context, q repository.DBExecutor, userID string, limit int) ([]domain.LedgerEntry, error) {
	entries := []domain.LedgerEntry{}
	query := `
		SELECT id, tx_id, user_id, type, amount, fee, reason, timestamp, counterparty_id, counterparty_username, counterparty_address, status
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`
	if err := q.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch ledger entries for user %s: %w", userID, err)
	}
	return entries, nil
}

// ExistsByTxID reports whether any entry carries the given tx ID.
func (r *LedgerRepository) ExistsByTxID(ctx context.Context, q repository.DBExecutor, txID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE tx_id = $1)`
	if err := q.GetContext(ctx, &exists, query, txID); err != nil {
		return false, fmt.Errorf("failed to check ledger entry for tx %s: %w", txID, err)
	}
	return exists, nil
}
