// internal/service/transfer_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/notify"
	"cryptonel-ledger/internal/ratelimit"
	"cryptonel-ledger/internal/repository"
	"cryptonel-ledger/internal/util"
	"cryptonel-ledger/pkg/db"
)

const (
	// MaxReasonLength bounds the free-text transfer reason.
	MaxReasonLength = 100
	// DefaultHistoryLimit is the history page size when the caller gives none.
	DefaultHistoryLimit = 5
	// MaxHistoryLimit caps a single history query.
	MaxHistoryLimit = 50

	notifyTimeout = 10 * time.Second
)

// TransferRequest is the presentation layer's transfer input.
type TransferRequest struct {
	SenderID         string
	RecipientAddress string
	Amount           string // Decimal string, canonicalized to 8 fractional digits
	Reason           string
	AuthValue        string
}

// TransferResult describes a committed transfer.
type TransferResult struct {
	TxID      string
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	NetAmount decimal.Decimal
	Timestamp time.Time
}

// FeeQuote is the fee calculator's answer for a prospective transfer.
type FeeQuote struct {
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	NetAmount      decimal.Decimal
	TotalDeduction decimal.Decimal // What the sender would pay: amount + fee
	FeeApplied     bool
}

// TransferService defines the transfer and ledger business logic.
type TransferService interface {
	// Transfer moves CRN from the sender to the account behind the
	// recipient address. The sender is debited amount + fee, the recipient
	// credited amount - fee, and two ledger entries sharing one tx ID are
	// appended, all atomically.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	// QuoteFee computes the fee a transfer of the given amount would carry
	// for this user, without moving anything.
	QuoteFee(ctx context.Context, userID, amount string) (*FeeQuote, error)
	// GetAccount returns the account for balance and address display.
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	// RecentTransactions returns the user's most recent ledger entries,
	// newest first.
	RecentTransactions(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)
}

// transferService implements the TransferService interface.
type transferService struct {
	dbBeginner   db.TxBeginner         // For starting transactions (e.g. *sqlx.DB)
	dbExecutor   repository.DBExecutor // For non-transactional reads
	accountRepo  repository.AccountRepository
	ledgerRepo   repository.LedgerRepository
	settingsRepo repository.SettingsRepository
	limiter      *ratelimit.Limiter
	sink         notify.Sink
	logger       *slog.Logger
	beginTx      db.BeginTxFunc
	commitTx     db.CommitTxFunc
	rollbackTx   db.RollbackTxFunc
	now          func() time.Time
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(
	dbBeginner db.TxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	settingsRepo repository.SettingsRepository,
	limiter *ratelimit.Limiter,
	sink notify.Sink,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) TransferService {
	return &transferService{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		settingsRepo: settingsRepo,
		limiter:      limiter,
		sink:         sink,
		logger:       logger,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
		now:          time.Now,
	}
}

// storeFailure wraps a persistence error so callers can distinguish a
// transient store outage from a business rejection.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, util.ErrStoreUnavailable, err)
}

// Transfer runs the full transfer pipeline: block check, rate limit,
// authentication, recipient and amount validation, fee computation, then the
// atomic balance move with both ledger appends in one transaction. Every
// rejection before the commit leaves balances and the ledger untouched. The
// rate-limit slot consumed up front is not refunded on a later rejection.
func (s *transferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	sender, err := s.accountRepo.GetByID(ctx, s.dbExecutor, req.SenderID)
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, fmt.Errorf("transfer: sender: %w", util.ErrAccountNotFound)
		}
		return nil, storeFailure("transfer: get sender", err)
	}
	if sender.Blocked() {
		return nil, fmt.Errorf("transfer: %w", util.ErrAccountBlocked)
	}

	// Settings are read fresh per transfer so admin changes apply at once.
	settings, err := s.settingsRepo.GetTransferSettings(ctx, s.dbExecutor)
	if err != nil {
		return nil, storeFailure("transfer: get settings", err)
	}

	limit := s.limiter.CheckAndConsume(sender.UserID, ratelimit.Policy{
		MaxCalls: settings.EffectiveTransferLimit(sender.Premium),
		Window:   settings.RateLimitWindow(),
	})
	if !limit.Allowed {
		return nil, &util.RateLimitError{RetryAfter: limit.RetryAfter}
	}

	if !VerifyAuth(sender, strings.TrimSpace(req.AuthValue), sender.ActiveAuthMethod()) {
		return nil, fmt.Errorf("transfer: %w", util.ErrAuthenticationFailed)
	}

	recipient, err := s.accountRepo.FindByAddress(ctx, s.dbExecutor, strings.TrimSpace(req.RecipientAddress))
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, fmt.Errorf("transfer: recipient: %w", util.ErrAccountNotFound)
		}
		return nil, storeFailure("transfer: find recipient", err)
	}
	if recipient.UserID == sender.UserID {
		return nil, fmt.Errorf("transfer: %w", util.ErrSelfTransfer)
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	if amount.LessThan(settings.MinAmount) || amount.GreaterThan(settings.MaxAmount) {
		return nil, fmt.Errorf("transfer: %w", util.ErrAmountOutOfRange)
	}

	reason := strings.TrimSpace(req.Reason)
	if len(reason) > MaxReasonLength {
		return nil, fmt.Errorf("transfer: reason too long: %w", util.ErrInvalidInput)
	}

	fee, net := ComputeFee(amount, sender.Premium, settings)
	debit := amount.Add(fee)

	// Early check on the validation read. Not authoritative: the balance is
	// re-checked under the account locks at commit time.
	if sender.Balance.LessThan(debit) {
		return nil, fmt.Errorf("transfer: %w", util.ErrInsufficientFunds)
	}

	txID := uuid.NewString()
	timestamp := s.now().UTC()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, storeFailure("transfer: begin transaction", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	if err := s.accountRepo.TransferBalance(ctx, txExecutor, sender.UserID, recipient.UserID, debit, net); err != nil {
		if util.IsError(err, util.ErrInsufficientFunds) || util.IsError(err, util.ErrAccountNotFound) {
			return nil, fmt.Errorf("transfer: %w", err)
		}
		return nil, storeFailure("transfer: balance move", err)
	}

	sentEntry := &domain.LedgerEntry{
		TxID:                 txID,
		UserID:               sender.UserID,
		Type:                 domain.LedgerEntrySent,
		Amount:               amount,
		Fee:                  fee,
		Reason:               reason,
		Timestamp:            timestamp,
		CounterpartyID:       recipient.UserID,
		CounterpartyUsername: recipient.Username,
		CounterpartyAddress:  recipient.PublicAddress,
		Status:               domain.LedgerEntryCompleted,
	}
	receivedEntry := &domain.LedgerEntry{
		TxID:                 txID,
		UserID:               recipient.UserID,
		Type:                 domain.LedgerEntryReceived,
		Amount:               net,
		Fee:                  fee,
		Reason:               reason,
		Timestamp:            timestamp,
		CounterpartyID:       sender.UserID,
		CounterpartyUsername: sender.Username,
		CounterpartyAddress:  sender.PublicAddress,
		Status:               domain.LedgerEntryCompleted,
	}
	if err := s.ledgerRepo.Append(ctx, txExecutor, sentEntry); err != nil {
		return nil, storeFailure("transfer: append sender entry", err)
	}
	if err := s.ledgerRepo.Append(ctx, txExecutor, receivedEntry); err != nil {
		return nil, storeFailure("transfer: append recipient entry", err)
	}

	if err := s.commitTx(txController); err != nil {
		if resolveErr := s.resolveCommit(ctx, txID); resolveErr != nil {
			return nil, resolveErr
		}
		s.logger.Warn("commit reported an error but the transfer landed", "tx_id", txID, "error", err)
	}

	s.logger.Info("transfer committed",
		"tx_id", txID,
		"sender_id", sender.UserID,
		"recipient_id", recipient.UserID,
		"amount", domain.FormatAmount(amount),
		"fee", domain.FormatAmount(fee),
	)

	s.notifyAsync(notify.TransferNotification{
		TxID:              txID,
		SenderID:          sender.UserID,
		SenderUsername:    sender.Username,
		RecipientID:       recipient.UserID,
		RecipientUsername: recipient.Username,
		Amount:            amount,
		Fee:               fee,
		NetAmount:         net,
		Reason:            reason,
	})

	return &TransferResult{
		TxID:      txID,
		Amount:    amount,
		Fee:       fee,
		NetAmount: net,
		Timestamp: timestamp,
	}, nil
}

// resolveCommit decides the outcome of a transfer whose COMMIT errored. The
// ledger rows ride in the same transaction as the balance move, so a present
// tx ID means the commit landed; an absent one means nothing was applied.
func (s *transferService) resolveCommit(ctx context.Context, txID string) error {
	exists, err := s.ledgerRepo.ExistsByTxID(ctx, s.dbExecutor, txID)
	if err != nil {
		return storeFailure("transfer: resolve commit", err)
	}
	if exists {
		return nil
	}
	return fmt.Errorf("transfer: commit failed: %w", util.ErrStoreUnavailable)
}

// notifyAsync delivers the notification outside the request lifecycle.
// Failures are logged and never surface to the transfer caller.
func (s *transferService) notifyAsync(n notify.TransferNotification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.sink.NotifyTransfer(ctx, n); err != nil {
			s.logger.Error("transfer notification failed", "tx_id", n.TxID, "error", err)
		}
	}()
}

// QuoteFee computes the fee a transfer of the given amount would carry for
// this user under the current settings.
func (s *transferService) QuoteFee(ctx context.Context, userID, amountStr string) (*FeeQuote, error) {
	account, err := s.accountRepo.GetByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, fmt.Errorf("quote fee: %w", util.ErrAccountNotFound)
		}
		return nil, storeFailure("quote fee: get account", err)
	}

	settings, err := s.settingsRepo.GetTransferSettings(ctx, s.dbExecutor)
	if err != nil {
		return nil, storeFailure("quote fee: get settings", err)
	}

	amount, err := domain.ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("quote fee: %w", err)
	}

	fee, net := ComputeFee(amount, account.Premium, settings)
	return &FeeQuote{
		Amount:         amount,
		Fee:            fee,
		NetAmount:      net,
		TotalDeduction: amount.Add(fee),
		FeeApplied:     fee.IsPositive(),
	}, nil
}

// GetAccount returns the account for balance and address display.
func (s *transferService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, err
		}
		return nil, storeFailure("get account", err)
	}
	return account, nil
}

// RecentTransactions returns the user's most recent ledger entries, newest
// first. Limit defaults to DefaultHistoryLimit and is capped at
// MaxHistoryLimit.
func (s *transferService) RecentTransactions(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if _, err := s.accountRepo.GetByID(ctx, s.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, err
		}
		return nil, storeFailure("recent transactions: get account", err)
	}

	entries, err := s.ledgerRepo.RecentByUserID(ctx, s.dbExecutor, userID, limit)
	if err != nil {
		return nil, storeFailure("recent transactions", err)
	}
	return entries, nil
}
