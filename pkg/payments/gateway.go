// Package payments moves jackpot and treasury funds to a destination wallet.
package payments

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mock/gateway.go -package=mock . Gateway

// ErrTransferRejected marks a transfer the provider refused. Nothing moved.
var ErrTransferRejected = errors.New("transfer rejected")

// TransferRequest describes one outbound payment. Providers deduplicate on
// IdempotencyKey, so retrying a request never pays twice.
type TransferRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
	Destination    string `json:"destination"`
	Amount         uint64 `json:"amount"`
	Memo           string `json:"memo,omitempty"`
}

// TransferReceipt is the provider's confirmation of a settled transfer.
type TransferReceipt struct {
	Reference   string    `json:"reference"`
	Destination string    `json:"destination"`
	Amount      uint64    `json:"amount"`
	SettledAt   time.Time `json:"settledAt"`
}

// Gateway is the payment primitive. Transfer either settles the whole amount
// and returns a receipt, or returns an error and moves nothing.
type Gateway interface {
	Balance(ctx context.Context) (uint64, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error)
}
