package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) EnsureAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.EnsureAccount(ctx, accountID)
}

func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, accountID)
}

func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Debit(ctx, accountID, amount, referenceID); err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return ErrInsufficientCredits
		}
		return err
	}
	log.Info().Str("account_id", accountID.String()).Int64("amount", amount).Str("reference_id", referenceID).Msg("credit debit applied")
	return nil
}

func (s *Service) Refund(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Refund(ctx, accountID, amount, referenceID); err != nil {
		return err
	}
	log.Info().Str("account_id", accountID.String()).Int64("amount", amount).Str("reference_id", referenceID).Msg("credit refund applied")
	return nil
}

func (s *Service) Purchase(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Purchase(ctx, accountID, amount, referenceID); err != nil {
		return err
	}
	log.Info().Str("account_id", accountID.String()).Int64("amount", amount).Str("reference_id", referenceID).Msg("credit purchase applied")
	return nil
}

// PurchaseTx participates in an external transaction; see Repository.PurchaseTx.
func (s *Service) PurchaseTx(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, amount int64, referenceID string) error {
	return s.repo.PurchaseTx(ctx, tx, accountID, amount, referenceID)
}

func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, accountID, limit, offset)
}
