package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnsureAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_credits (account_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID)
	return err
}

func (r *Repository) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if err := r.EnsureAccount(ctx, accountID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM account_credits WHERE account_id = $1`, accountID)
	return balance, err
}

func (r *Repository) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, account_id, amount_delta, tx_type, reference_id, created_at
		FROM credit_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	return txs, err
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockBalance takes the per-account row lock every balance mutation runs
// under. The check-and-write that follows is race-free because of it.
func (r *Repository) lockBalance(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO account_credits (account_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM account_credits WHERE account_id = $1 FOR UPDATE`, accountID)
	return balance, err
}

func (r *Repository) getTransactionDeltaByRef(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, txType TxType, referenceID string) (int64, bool, error) {
	if referenceID == "" {
		return 0, false, nil
	}

	var delta int64
	err := tx.GetContext(ctx, &delta, `
		SELECT amount_delta
		FROM credit_transactions
		WHERE account_id = $1 AND tx_type = $2 AND reference_id = $3
		LIMIT 1
	`, accountID, string(txType), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return delta, true, nil
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE account_credits SET balance = $1, updated_at = now() WHERE account_id = $2`, balance, accountID)
	return err
}

func (r *Repository) insertTransaction(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, delta int64, txType TxType, referenceID string) error {
	var ref interface{}
	if referenceID == "" {
		ref = nil
	} else {
		ref = referenceID
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (account_id, amount_delta, tx_type, reference_id)
		VALUES ($1, $2, $3, $4)
	`, accountID, delta, string(txType), ref)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// applyTx performs one balance change inside the given transaction: row
// lock, idempotency check by (tx_type, reference_id), bounds check, then
// balance update plus journal insert. A replay of the same reference with
// the same amount is a no-op; a different amount is a conflict.
func (r *Repository) applyTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, delta int64, txType TxType, referenceID string) error {
	balance, err := r.lockBalance(ctx, tx, accountID)
	if err != nil {
		return err
	}

	existingDelta, exists, err := r.getTransactionDeltaByRef(ctx, tx, accountID, txType, referenceID)
	if err != nil {
		return err
	}
	if exists {
		if existingDelta != delta {
			return ErrReferenceConflict
		}
		return nil
	}

	nextBalance := balance + delta
	if nextBalance < 0 {
		return ErrInsufficientCredits
	}

	if err := r.updateBalance(ctx, tx, accountID, nextBalance); err != nil {
		return err
	}

	if err := r.insertTransaction(ctx, tx, accountID, delta, txType, referenceID); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// Lost the unique-index race; re-check the winning row.
			existingDelta, exists, checkErr := r.getTransactionDeltaByRef(ctx, tx, accountID, txType, referenceID)
			if checkErr != nil {
				return checkErr
			}
			if !exists || existingDelta != delta {
				return ErrReferenceConflict
			}
			return nil
		}
		return err
	}

	return nil
}

func (r *Repository) apply(ctx context.Context, accountID uuid.UUID, delta int64, txType TxType, referenceID string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.applyTx(ctx, tx, accountID, delta, txType, referenceID); err != nil {
		return err
	}

	return tx.Commit()
}

// Debit atomically deducts credits; ErrInsufficientCredits leaves the
// balance untouched.
func (r *Repository) Debit(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	return r.apply(ctx, accountID, -amount, TxTypeDebit, referenceID)
}

// Refund atomically returns credits debited for a failed action.
func (r *Repository) Refund(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	return r.apply(ctx, accountID, amount, TxTypeRefund, referenceID)
}

// Purchase atomically credits purchased credits.
func (r *Repository) Purchase(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	return r.apply(ctx, accountID, amount, TxTypePurchase, referenceID)
}

// PurchaseTx credits purchased credits within an external transaction, so
// payment settlement can commit the status transition and the balance
// credit as one unit.
func (r *Repository) PurchaseTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, referenceID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return r.applyTx(ctx, tx, accountID, amount, TxTypePurchase, referenceID)
}
