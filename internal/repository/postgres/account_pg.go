// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/repository"
	"cryptonel-ledger/internal/util"
)

const accountColumns = `user_id, username, balance, public_address, private_address, premium,
	ban, wallet_lock, auth_method, secret_word, transfer_password, totp_secret, created_at, updated_at`

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// GetByID retrieves an account by user ID using the provided DBExecutor.
func (r *AccountRepository) GetByID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	err := q.GetContext(ctx, &account, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", userID, err)
	}
	return &account, nil
}

// FindByAddress retrieves an account by its private address.
func (r *AccountRepository) FindByAddress(ctx context.Context, q repository.DBExecutor, privateAddress string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE private_address = $1`
	err := q.GetContext(ctx, &account, query, privateAddress)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by address: %w", err)
	}
	return &account, nil
}

// TransferBalance debits the sender and credits the recipient within the
// caller's transaction. Both rows are locked with SELECT ... FOR UPDATE in
// ascending user_id order, and the sender balance is re-checked under the
// lock, so concurrent transfers from the same account serialize and cannot
// double-spend.
func (r *AccountRepository) TransferBalance(ctx context.Context, q repository.DBExecutor, senderID, recipientID string, debit, credit decimal.Decimal) error {
	type lockedRow struct {
		UserID  string          `db:"user_id"`
		Balance decimal.Decimal `db:"balance"`
	}

	var rows []lockedRow
	lockQuery := `SELECT user_id, balance FROM accounts WHERE user_id IN ($1, $2) ORDER BY user_id FOR UPDATE`
	if err := q.SelectContext(ctx, &rows, lockQuery, senderID, recipientID); err != nil {
		return fmt.Errorf("failed to lock accounts %s, %s: %w", senderID, recipientID, err)
	}
	if len(rows) != 2 {
		return util.ErrAccountNotFound
	}

	var senderBalance decimal.Decimal
	for _, row := range rows {
		if row.UserID == senderID {
			senderBalance = row.Balance
		}
	}
	if senderBalance.LessThan(debit) {
		return util.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	debitQuery := `UPDATE accounts SET balance = balance - $1, updated_at = $2 WHERE user_id = $3`
	if _, err := q.ExecContext(ctx, debitQuery, debit, now, senderID); err != nil {
		return fmt.Errorf("failed to debit account %s: %w", senderID, err)
	}
	creditQuery := `UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE user_id = $3`
	if _, err := q.ExecContext(ctx, creditQuery, credit, now, recipientID); err != nil {
		return fmt.Errorf("failed to credit account %s: %w", recipientID, err)
	}
	return nil
}
