package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents payment status. Transitions:
// pending -> completed (webhook settlement, terminal success path),
// pending -> failed (terminal), completed -> refunded (administrative,
// terminal). completed is the only state that triggers a ledger credit,
// exactly once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment tracks one credit purchase from creation to settlement. The
// internal id is the correlation key (api_ref) the provider echoes back;
// ProviderRef stays empty until the completion webhook reports the
// provider's own transaction id.
type Payment struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	AccountID        uuid.UUID      `db:"account_id" json:"account_id"`
	ProviderRef      sql.NullString `db:"provider_ref" json:"provider_ref,omitempty"`
	AmountCents      int64          `db:"amount_cents" json:"amount_cents"`
	Currency         string         `db:"currency" json:"currency"`
	CreditsPurchased int64          `db:"credits_purchased" json:"credits_purchased"`
	Status           Status         `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	CompletedAt      sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// Package is one purchasable credit bundle from the injected price table.
type Package struct {
	Credits    int64 `json:"credits"`
	PriceCents int64 `json:"price_cents"`
}
