// internal/domain/account.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthMethod identifies the credential an account requires for transfers.
type AuthMethod string

const (
	AuthMethodSecretWord       AuthMethod = "secret_word"
	AuthMethodTransferPassword AuthMethod = "transfer_password"
	AuthMethodTOTP             AuthMethod = "2fa"
)

// Account represents a CRN wallet holder.
type Account struct {
	UserID         string          `db:"user_id" json:"user_id"`                 // Primary key, immutable
	Username       string          `db:"username" json:"username"`               // Display name, denormalized into ledger rows
	Balance        decimal.Decimal `db:"balance" json:"balance"`                 // NUMERIC(28, 8) in DB, never negative
	PublicAddress  string          `db:"public_address" json:"public_address"`   // Shareable identifier
	PrivateAddress string          `db:"private_address" json:"-"`               // Secret transfer destination key, immutable once issued
	Premium        bool            `db:"premium" json:"premium"`                 // Fee exemption and relaxed rate limits
	Ban            bool            `db:"ban" json:"ban"`                         // Blocks all transfer operations
	WalletLock     bool            `db:"wallet_lock" json:"wallet_lock"`         // Blocks all transfer operations
	AuthMethod     AuthMethod      `db:"auth_method" json:"auth_method"`         // Active credential method
	SecretWord     string          `db:"secret_word" json:"-"`
	TransferPass   string          `db:"transfer_password" json:"-"`
	TOTPSecret     string          `db:"totp_secret" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Blocked reports whether the account may not transfer at all.
func (a *Account) Blocked() bool {
	return a.Ban || a.WalletLock
}

// ActiveAuthMethod returns the account's configured credential method.
// Accounts with no explicit method default to the secret word.
func (a *Account) ActiveAuthMethod() AuthMethod {
	if a.AuthMethod == "" {
		return AuthMethodSecretWord
	}
	return a.AuthMethod
}
