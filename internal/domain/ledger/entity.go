package ledger

import (
	"time"

	"github.com/google/uuid"
)

type TxType string

const (
	TxTypeDebit    TxType = "debit"
	TxTypeRefund   TxType = "refund"
	TxTypePurchase TxType = "purchase"
)

// Balance is the durable per-account credit balance. Mutated only through
// Repository operations; never negative.
type Balance struct {
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is a journal row recording one committed balance change.
// ReferenceID keys idempotent application for operations that may be
// retried (refunds, webhook purchase credits).
type Transaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	AmountDelta int64     `db:"amount_delta" json:"amount_delta"`
	TxType      TxType    `db:"tx_type" json:"tx_type"`
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
