// internal/repository/account_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
)

// AccountRepository defines the interface for account data operations.
// Balance is mutated exclusively through TransferBalance; no other code path
// may write it.
type AccountRepository interface {
	// GetByID retrieves an account by its user ID.
	GetByID(ctx context.Context, q DBExecutor, userID string) (*domain.Account, error)
	// FindByAddress retrieves an account by its private address.
	FindByAddress(ctx context.Context, q DBExecutor, privateAddress string) (*domain.Account, error)
	// TransferBalance debits the sender and credits the recipient,
	// all-or-nothing. It re-reads the sender balance under the account
	// locks and returns util.ErrInsufficientFunds when the debit no longer
	// fits; the validation read that preceded it is not authoritative.
	// Locks are taken in ascending user ID order to prevent deadlock.
	// The Postgres implementation must be called inside a transaction.
	TransferBalance(ctx context.Context, q DBExecutor, senderID, recipientID string, debit, credit decimal.Decimal) error
}
