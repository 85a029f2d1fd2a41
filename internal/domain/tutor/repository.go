package tutor

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, in *Interaction) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO ai_interactions (account_id, prompt, response, model_used, credits_used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, in.AccountID, in.Prompt, in.Response, in.ModelUsed, in.CreditsUsed).Scan(&in.ID, &in.CreatedAt)
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Interaction, error) {
	var interactions []Interaction
	err := r.db.SelectContext(ctx, &interactions, `
		SELECT id, account_id, prompt, response, model_used, credits_used, created_at
		FROM ai_interactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	return interactions, err
}

func (r *Repository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ai_interactions WHERE account_id = $1`, accountID)
	return count, err
}
