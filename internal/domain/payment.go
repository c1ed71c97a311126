package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes the booking token from the later settlement.
type PaymentKind string

const (
	PaymentToken   PaymentKind = "token"
	PaymentBalance PaymentKind = "balance"
)

// Payment is one recorded charge.
// swagger:model Payment
type Payment struct {
	ID           string          `json:"id"`
	RequestTitle string          `json:"request_title"`
	UserID       string          `json:"user_id"`
	Kind         PaymentKind     `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PaymentRepository stores the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	FindByRequest(ctx context.Context, requestTitle, userID string, kind PaymentKind) (*Payment, error)
}
