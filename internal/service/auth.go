// internal/service/auth.go
package service

import (
	"crypto/subtle"

	"github.com/pquerna/otp/totp"

	"cryptonel-ledger/internal/domain"
)

// VerifyAuth checks a supplied credential against the account's stored
// credential for the given method. The result is a binary pass/fail; callers
// must not report which part of the credential mismatched. Unknown methods
// and accounts with no stored credential for the method fail closed.
func VerifyAuth(account *domain.Account, supplied string, method domain.AuthMethod) bool {
	switch method {
	case domain.AuthMethodSecretWord:
		return credentialEqual(supplied, account.SecretWord)
	case domain.AuthMethodTransferPassword:
		return credentialEqual(supplied, account.TransferPass)
	case domain.AuthMethodTOTP:
		if account.TOTPSecret == "" {
			return false
		}
		return totp.Validate(supplied, account.TOTPSecret)
	}
	return false
}

func credentialEqual(supplied, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}
