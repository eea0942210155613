// internal/repository/memory/store.go

// Package memory provides a thread-safe in-memory store implementing the
// repository interfaces. It backs tests and the "memory" store driver and
// deliberately keeps the implementation simple: a single lock serializes all
// mutations, which makes per-account balance updates linearizable.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/repository"
	"cryptonel-ledger/internal/util"
	"cryptonel-ledger/pkg/db"
)

// Store is an in-memory account, ledger and settings store.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	ledgers  map[string][]domain.LedgerEntry
	settings domain.TransferSettings
	nextID   int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		ledgers:  make(map[string][]domain.LedgerEntry),
		nextID:   1,
	}
}

// PutAccount inserts or replaces an account. Seeding helper for tests and
// the memory driver.
func (s *Store) PutAccount(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.UserID] = account
}

// SetTransferSettings replaces the stored transfer policy.
func (s *Store) SetTransferSettings(settings domain.TransferSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// GetByID implements repository.AccountRepository.
func (s *Store) GetByID(_ context.Context, _ repository.DBExecutor, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, util.ErrAccountNotFound
	}
	return &account, nil
}

// FindByAddress implements repository.AccountRepository.
func (s *Store) FindByAddress(_ context.Context, _ repository.DBExecutor, privateAddress string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.PrivateAddress == privateAddress {
			account := account
			return &account, nil
		}
	}
	return nil, util.ErrAccountNotFound
}

// TransferBalance implements repository.AccountRepository. The sender
// balance is re-checked under the store lock, so concurrent transfers from
// the same account observe each other's debits.
func (s *Store) TransferBalance(_ context.Context, _ repository.DBExecutor, senderID, recipientID string, debit, credit decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[senderID]
	if !ok {
		return util.ErrAccountNotFound
	}
	recipient, ok := s.accounts[recipientID]
	if !ok {
		return util.ErrAccountNotFound
	}
	if sender.Balance.LessThan(debit) {
		return util.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	sender.Balance = sender.Balance.Sub(debit)
	sender.UpdatedAt = now
	recipient.Balance = recipient.Balance.Add(credit)
	recipient.UpdatedAt = now
	s.accounts[senderID] = sender
	s.accounts[recipientID] = recipient
	return nil
}

// Append implements repository.LedgerRepository.
func (s *Store) Append(_ context.Context, _ repository.DBExecutor, entry *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	s.ledgers[entry.UserID] = append(s.ledgers[entry.UserID], *entry)
	return nil
}

// RecentByUserID implements repository.LedgerRepository.
func (s *Store) RecentByUserID(_ context.Context, _ repository.DBExecutor, userID string, limit int) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LedgerEntry, len(s.ledgers[userID]))
	copy(entries, s.ledgers[userID])
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ExistsByTxID implements repository.LedgerRepository.
func (s *Store) ExistsByTxID(_ context.Context, _ repository.DBExecutor, txID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entries := range s.ledgers {
		for _, entry := range entries {
			if entry.TxID == txID {
				return true, nil
			}
		}
	}
	return false, nil
}

// GetTransferSettings implements repository.SettingsRepository.
func (s *Store) GetTransferSettings(_ context.Context, _ repository.DBExecutor) (domain.TransferSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// noopTx satisfies db.TxController and repository.DBExecutor so the service
// layer's transaction plumbing works unchanged against the memory store. The
// store applies its mutations atomically on its own, so commit and rollback
// have nothing to do.
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var errNoSQL = errors.New("memory store does not execute SQL")

func (noopTx) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}
func (noopTx) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}
func (noopTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (noopTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

// BeginTx is the db.BeginTxFunc counterpart for the memory store.
func BeginTx(_ context.Context, _ db.TxBeginner) (db.TxController, error) {
	return noopTx{}, nil
}

// CommitTx is the db.CommitTxFunc counterpart for the memory store.
func CommitTx(tx db.TxController) error { return tx.Commit() }

// RollbackTx is the db.RollbackTxFunc counterpart for the memory store.
func RollbackTx(tx db.TxController) { _ = tx.Rollback() }

// Executor returns a DBExecutor usable for the service's non-transactional
// reads against the memory store.
func Executor() repository.DBExecutor { return noopTx{} }
