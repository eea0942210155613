// internal/api/handler/transfer.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cryptonel-ledger/internal/api/types"
	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/service"
	"cryptonel-ledger/internal/util"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 15 * time.Second

// TransferHandler handles HTTP requests for the transfer and wallet surface.
type TransferHandler struct {
	service service.TransferService
	logger  *slog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc service.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *TransferHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *TransferHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var rateErr *util.RateLimitError

	switch {
	case errors.As(err, &rateErr):
		statusCode = http.StatusTooManyRequests
		message = "Too many transfers, slow down"
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
	case util.IsError(err, util.ErrInvalidAmountFormat),
		util.IsError(err, util.ErrAmountOutOfRange),
		util.IsError(err, util.ErrSelfTransfer),
		util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrAuthenticationFailed):
		statusCode = http.StatusUnauthorized
		message = "Authentication failed"
	case util.IsError(err, util.ErrAccountBlocked):
		statusCode = http.StatusForbidden
		message = "Account is blocked"
	case util.IsError(err, util.ErrAccountNotFound), util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Account not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrStoreUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Store temporarily unavailable, safe to retry"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// TransferRequest represents the request body for a transfer.
type TransferRequest struct {
	SenderID         string `json:"sender_id"`
	RecipientAddress string `json:"recipient_address"`
	Amount           string `json:"amount"`
	Reason           string `json:"reason"`
	AuthValue        string `json:"auth_value"`
}

// Transfer handles the transfer request.
// POST /transfers
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.SenderID == "" || req.RecipientAddress == "" || req.Amount == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	result, err := h.service.Transfer(r.Context(), service.TransferRequest{
		SenderID:         req.SenderID,
		RecipientAddress: req.RecipientAddress,
		Amount:           req.Amount,
		Reason:           req.Reason,
		AuthValue:        req.AuthValue,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"tx_id":      result.TxID,
		"amount":     domain.FormatAmount(result.Amount),
		"fee":        domain.FormatAmount(result.Fee),
		"net_amount": domain.FormatAmount(result.NetAmount),
		"timestamp":  result.Timestamp,
	})
}

// QuoteRequest represents the request body for a fee quote.
type QuoteRequest struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// QuoteFee handles the fee calculator request.
// POST /transfers/quote
func (h *TransferHandler) QuoteFee(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.UserID == "" || req.Amount == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	quote, err := h.service.QuoteFee(r.Context(), req.UserID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"amount":          domain.FormatAmount(quote.Amount),
		"fee":             domain.FormatAmount(quote.Fee),
		"net_amount":      domain.FormatAmount(quote.NetAmount),
		"total_deduction": domain.FormatAmount(quote.TotalDeduction),
		"fee_applied":     quote.FeeApplied,
	})
}

// GetBalance handles the balance request.
// GET /wallets/{userID}/balance
func (h *TransferHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": account.UserID,
		"balance": domain.FormatAmount(account.Balance),
		"premium": account.Premium,
	})
}

// GetAddress handles the public address request.
// GET /wallets/{userID}/address
func (h *TransferHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        account.UserID,
		"public_address": account.PublicAddress,
	})
}

// GetHistory handles the transfer history request.
// GET /wallets/{userID}/transactions?limit=N
func (h *TransferHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			h.respondWithError(w, util.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	entries, err := h.service.RecentTransactions(r.Context(), userID, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ListResponse[domain.LedgerEntry]{
		Data:  entries,
		Count: len(entries),
	})
}
