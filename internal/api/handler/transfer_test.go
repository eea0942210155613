// internal/api/handler/transfer_test.go
package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/notify"
	"cryptonel-ledger/internal/ratelimit"
	"cryptonel-ledger/internal/repository/memory"
	"cryptonel-ledger/internal/service"
)

func testRouter() (http.Handler, *memory.Store) {
	store := memory.NewStore()
	store.SetTransferSettings(domain.TransferSettings{
		TaxEnabled:             true,
		TaxRate:                decimal.RequireFromString("0.01"),
		MinAmount:              decimal.RequireFromString("0.25"),
		MaxAmount:              decimal.RequireFromString("1000"),
		MaxTransfersPerWindow:  3,
		RateLimitWindowMinutes: 5,
	})
	store.PutAccount(domain.Account{
		UserID:         "100",
		Username:       "alice",
		Balance:        decimal.RequireFromString("100"),
		PublicAddress:  "pub-alice",
		PrivateAddress: "priv-alice",
		SecretWord:     "open sesame",
	})
	store.PutAccount(domain.Account{
		UserID:         "200",
		Username:       "bob",
		Balance:        decimal.RequireFromString("50"),
		PublicAddress:  "pub-bob",
		PrivateAddress: "priv-bob",
		SecretWord:     "bob secret",
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewTransferService(
		nil, memory.Executor(), store, store, store,
		ratelimit.New(), notify.NewLogSink(logger), logger,
		memory.BeginTx, memory.CommitTx, memory.RollbackTx,
	)
	h := NewTransferHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/transfers", h.Transfer)
	r.Post("/transfers/quote", h.QuoteFee)
	r.Get("/wallets/{userID}/balance", h.GetBalance)
	r.Get("/wallets/{userID}/address", h.GetAddress)
	r.Get("/wallets/{userID}/transactions", h.GetHistory)
	return r, store
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTransferEndpointSuccess(t *testing.T) {
	router, _ := testRouter()

	rec := postJSON(t, router, "/transfers", TransferRequest{
		SenderID:         "100",
		RecipientAddress: "priv-bob",
		Amount:           "10",
		Reason:           "lunch",
		AuthValue:        "open sesame",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["tx_id"])
	assert.Equal(t, "10.00000000", resp["amount"])
	assert.Equal(t, "0.10000000", resp["fee"])
	assert.Equal(t, "9.90000000", resp["net_amount"])
}

func TestTransferEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*TransferRequest)
		wantStatus int
	}{
		{"bad auth", func(r *TransferRequest) { r.AuthValue = "nope" }, http.StatusUnauthorized},
		{"unknown recipient", func(r *TransferRequest) { r.RecipientAddress = "priv-nobody" }, http.StatusNotFound},
		{"self transfer", func(r *TransferRequest) { r.RecipientAddress = "priv-alice" }, http.StatusBadRequest},
		{"bad amount", func(r *TransferRequest) { r.Amount = "abc" }, http.StatusBadRequest},
		{"too much", func(r *TransferRequest) { r.Amount = "100" }, http.StatusPaymentRequired},
		{"missing fields", func(r *TransferRequest) { r.SenderID = "" }, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := testRouter()
			req := TransferRequest{
				SenderID:         "100",
				RecipientAddress: "priv-bob",
				Amount:           "10",
				Reason:           "lunch",
				AuthValue:        "open sesame",
			}
			tt.mutate(&req)
			rec := postJSON(t, router, "/transfers", req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestTransferEndpointRateLimited(t *testing.T) {
	router, _ := testRouter()
	req := TransferRequest{
		SenderID:         "100",
		RecipientAddress: "priv-bob",
		Amount:           "1",
		Reason:           "ping",
		AuthValue:        "open sesame",
	}

	for i := 0; i < 3; i++ {
		rec := postJSON(t, router, "/transfers", req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postJSON(t, router, "/transfers", req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestQuoteEndpoint(t *testing.T) {
	router, _ := testRouter()

	rec := postJSON(t, router, "/transfers/quote", QuoteRequest{UserID: "100", Amount: "100"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1.00000000", resp["fee"])
	assert.Equal(t, "101.00000000", resp["total_deduction"])
	assert.Equal(t, true, resp["fee_applied"])
}

func TestBalanceAndAddressEndpoints(t *testing.T) {
	router, _ := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/wallets/100/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var balance map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "100.00000000", balance["balance"])

	req = httptest.NewRequest(http.MethodGet, "/wallets/100/address", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var address map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &address))
	assert.Equal(t, "pub-alice", address["public_address"])

	req = httptest.NewRequest(http.MethodGet, "/wallets/999/balance", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	router, _ := testRouter()

	rec := postJSON(t, router, "/transfers", TransferRequest{
		SenderID:         "100",
		RecipientAddress: "priv-bob",
		Amount:           "5",
		Reason:           "rent",
		AuthValue:        "open sesame",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/wallets/100/transactions?limit=5", nil)
	historyRec := httptest.NewRecorder()
	router.ServeHTTP(historyRec, req)
	assert.Equal(t, http.StatusOK, historyRec.Code)

	var resp struct {
		Data  []domain.LedgerEntry `json:"data"`
		Count int                  `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(historyRec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "rent", resp.Data[0].Reason)
	assert.Equal(t, domain.LedgerEntrySent, resp.Data[0].Type)
}
