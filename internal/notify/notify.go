// internal/notify/notify.go
package notify

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// TransferNotification describes a committed transfer for outbound delivery.
type TransferNotification struct {
	TxID              string
	SenderID          string
	SenderUsername    string
	RecipientID       string
	RecipientUsername string
	Amount            decimal.Decimal
	Fee               decimal.Decimal
	NetAmount         decimal.Decimal
	Reason            string
}

// Sink delivers transfer notifications. Delivery is best-effort: callers
// must never fail a committed transfer because a sink errored.
type Sink interface {
	NotifyTransfer(ctx context.Context, n TransferNotification) error
}

// LogSink writes notifications to the structured log. It stands in for the
// outbound email/DM delivery, which lives outside this service.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// NotifyTransfer logs the committed transfer.
func (s *LogSink) NotifyTransfer(_ context.Context, n TransferNotification) error {
	s.logger.Info("transfer notification",
		"tx_id", n.TxID,
		"sender_id", n.SenderID,
		"recipient_id", n.RecipientID,
		"amount", n.Amount.String(),
		"fee", n.Fee.String(),
	)
	return nil
}
