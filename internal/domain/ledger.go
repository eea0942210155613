// internal/domain/ledger.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType distinguishes the two sides of a transfer.
type LedgerEntryType string

const (
	LedgerEntrySent     LedgerEntryType = "sent"
	LedgerEntryReceived LedgerEntryType = "received"
)

// LedgerEntryStatus is the state of a ledger entry. Only completed entries
// reach the ledger; a transfer either fully commits or appends nothing.
type LedgerEntryStatus string

const LedgerEntryCompleted LedgerEntryStatus = "completed"

// LedgerEntry is one side of a transfer, immutable once written. The sender
// and recipient copies of the same transfer share a TxID.
type LedgerEntry struct {
	ID                   int64             `db:"id" json:"-"` // BIGSERIAL in DB
	TxID                 string            `db:"tx_id" json:"tx_id"`
	UserID               string            `db:"user_id" json:"user_id"`
	Type                 LedgerEntryType   `db:"type" json:"type"`
	Amount               decimal.Decimal   `db:"amount" json:"amount"` // Debit basis for sent, credited amount for received
	Fee                  decimal.Decimal   `db:"fee" json:"fee"`
	Reason               string            `db:"reason" json:"reason"`
	Timestamp            time.Time         `db:"timestamp" json:"timestamp"`
	CounterpartyID       string            `db:"counterparty_id" json:"counterparty_id"`
	CounterpartyUsername string            `db:"counterparty_username" json:"counterparty_username"`
	CounterpartyAddress  string            `db:"counterparty_address" json:"counterparty_address"`
	Status               LedgerEntryStatus `db:"status" json:"status"`
}
