package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/config"
	"github.com/edusdg/tutoria-api/internal/domain/account"
	"github.com/edusdg/tutoria-api/internal/domain/ledger"
	"github.com/edusdg/tutoria-api/internal/pkg/database"
	"github.com/edusdg/tutoria-api/internal/pkg/jwt"
	"github.com/edusdg/tutoria-api/internal/pkg/logger"
)

// Demo credentials for local development only.
const (
	demoEmail    = "demo@tutoria.dev"
	demoUsername = "demo"
	demoPassword = "demo12345"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS account_credits (
		account_id UUID PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		account_id UUID NOT NULL,
		amount_delta BIGINT NOT NULL,
		tx_type TEXT NOT NULL,
		reference_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (account_id, tx_type, reference_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ai_interactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		account_id UUID NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		model_used TEXT NOT NULL,
		credits_used BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_interactions_account ON ai_interactions (account_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		provider_ref TEXT,
		amount_cents BIGINT NOT NULL,
		currency TEXT NOT NULL,
		credits_purchased BIGINT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_account ON payments (account_id, created_at DESC)`,
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatal().Err(err).Msg("Schema migration failed")
		}
	}
	log.Info().Msg("Schema is up to date")

	ledgerService := ledger.NewService(ledger.NewRepository(db))
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(
		accountRepo,
		ledgerService,
		jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL),
		cfg.StarterCredits,
	)

	if _, err := accountRepo.GetByEmail(ctx, demoEmail); err == nil {
		log.Info().Str("email", demoEmail).Msg("Demo account already exists, skipping")
		return
	} else if !errors.Is(err, account.ErrNotFound) {
		log.Fatal().Err(err).Msg("Failed to look up demo account")
	}

	a, err := accountService.Register(ctx, demoEmail, demoUsername, demoPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo account")
	}

	balance, err := ledgerService.GetBalance(ctx, a.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read demo balance")
	}

	log.Info().
		Str("account_id", a.ID.String()).
		Str("email", demoEmail).
		Int64("credits", balance).
		Msg("Demo account seeded")
}
