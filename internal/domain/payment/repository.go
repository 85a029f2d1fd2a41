package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LedgerApplier credits purchased credits inside the settlement
// transaction. Satisfied by *ledger.Service.
type LedgerApplier interface {
	PurchaseTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, referenceID string) error
}

type Repository struct {
	db     *sqlx.DB
	ledger LedgerApplier
}

func NewRepository(db *sqlx.DB, ledger LedgerApplier) *Repository {
	return &Repository{db: db, ledger: ledger}
}

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payments (id, account_id, amount_cents, currency, credits_purchased, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, p.ID, p.AccountID, p.AmountCents, p.Currency, p.CreditsPurchased, p.Status).Scan(&p.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	return payments, err
}

func (r *Repository) lockPayment(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Settle applies a completion notification: mark the payment completed,
// record the provider's transaction id, and credit the account's balance,
// all in one transaction. The status gate inside the same transaction is
// the idempotency guard; concurrent duplicate deliveries serialize on the
// payment row lock and every loser sees ErrAlreadySettled.
func (r *Repository) Settle(ctx context.Context, id uuid.UUID, providerRef string) (*Payment, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := r.lockPayment(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case StatusCompleted:
		return p, ErrAlreadySettled
	case StatusFailed, StatusRefunded:
		return p, ErrTerminalState
	}

	err = tx.GetContext(ctx, p, `
		UPDATE payments
		SET status = $2, provider_ref = $3, completed_at = now()
		WHERE id = $1
		RETURNING *
	`, id, StatusCompleted, providerRef)
	if err != nil {
		return nil, fmt.Errorf("mark payment completed: %w", err)
	}

	// Same transaction as the status flip: the credit and the completed
	// state commit together or not at all.
	if err := r.ledger.PurchaseTx(ctx, tx, p.AccountID, p.CreditsPurchased, "payment:"+p.ID.String()); err != nil {
		return nil, fmt.Errorf("credit purchased amount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkFailed moves a pending payment to failed. Completed and refunded
// payments are untouched.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := r.lockPayment(ctx, tx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		return ErrTerminalState
	}

	if _, err := tx.ExecContext(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, StatusFailed); err != nil {
		return err
	}
	return tx.Commit()
}

// MarkRefunded is the administrative completed -> refunded transition.
// It records the state only; returning money and clawing back credits is
// an operator action outside this system.
func (r *Repository) MarkRefunded(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := r.lockPayment(ctx, tx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusCompleted {
		return ErrNotRefundable
	}

	if _, err := tx.ExecContext(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, StatusRefunded); err != nil {
		return err
	}
	return tx.Commit()
}
