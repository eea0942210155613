// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
	"time"
)

// Common application-specific errors. Every transfer rejection maps to one
// of these; none of them is fatal to the process.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountBlocked       = errors.New("account is banned or wallet-locked")
	ErrRateLimited          = errors.New("transfer rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSelfTransfer         = errors.New("cannot transfer to yourself")
	ErrInvalidAmountFormat  = errors.New("invalid amount format")
	ErrAmountOutOfRange     = errors.New("amount out of allowed range")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
)

// RateLimitError wraps ErrRateLimited with the time the caller has to wait
// until the oldest in-window transfer expires.
type RateLimitError struct {
	RetryAfter time.Duration
	Remaining  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("transfer rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// IsError reports whether err matches the given sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
