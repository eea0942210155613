// internal/service/auth_test.go
package service

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"

	"cryptonel-ledger/internal/domain"
)

func authAccount() *domain.Account {
	return &domain.Account{
		UserID:       "100",
		SecretWord:   "correct horse battery staple",
		TransferPass: "tr4nsfer-pass",
		TOTPSecret:   "JBSWY3DPEHPK3PXP",
	}
}

func TestVerifyAuthSecretWord(t *testing.T) {
	account := authAccount()

	assert.True(t, VerifyAuth(account, "correct horse battery staple", domain.AuthMethodSecretWord))
	assert.False(t, VerifyAuth(account, "wrong word", domain.AuthMethodSecretWord))
	assert.False(t, VerifyAuth(account, "", domain.AuthMethodSecretWord))
}

func TestVerifyAuthTransferPassword(t *testing.T) {
	account := authAccount()

	assert.True(t, VerifyAuth(account, "tr4nsfer-pass", domain.AuthMethodTransferPassword))
	assert.False(t, VerifyAuth(account, "tr4nsfer-pass ", domain.AuthMethodTransferPassword))
}

func TestVerifyAuthTOTP(t *testing.T) {
	account := authAccount()

	code, err := totp.GenerateCode(account.TOTPSecret, time.Now())
	assert.NoError(t, err)

	assert.True(t, VerifyAuth(account, code, domain.AuthMethodTOTP))
	assert.False(t, VerifyAuth(account, "000000", domain.AuthMethodTOTP))
}

func TestVerifyAuthFailsClosed(t *testing.T) {
	account := authAccount()

	// Unknown method
	assert.False(t, VerifyAuth(account, "anything", domain.AuthMethod("fingerprint")))

	// No stored credential for the method
	empty := &domain.Account{UserID: "101"}
	assert.False(t, VerifyAuth(empty, "", domain.AuthMethodSecretWord))
	assert.False(t, VerifyAuth(empty, "guess", domain.AuthMethodTransferPassword))
	assert.False(t, VerifyAuth(empty, "123456", domain.AuthMethodTOTP))
}

func TestActiveAuthMethodDefaultsToSecretWord(t *testing.T) {
	account := &domain.Account{UserID: "102"}
	assert.Equal(t, domain.AuthMethodSecretWord, account.ActiveAuthMethod())

	account.AuthMethod = domain.AuthMethodTOTP
	assert.Equal(t, domain.AuthMethodTOTP, account.ActiveAuthMethod())
}
