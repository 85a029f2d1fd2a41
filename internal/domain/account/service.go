package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/pkg/jwt"
	"github.com/edusdg/tutoria-api/internal/pkg/password"
)

// CreditGranter grants starter credits on registration. Satisfied by
// *ledger.Service.
type CreditGranter interface {
	EnsureAccount(ctx context.Context, accountID uuid.UUID) error
	Purchase(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error
}

type Service struct {
	repo           *Repository
	credits        CreditGranter
	jwt            *jwt.Service
	starterCredits int64
}

func NewService(repo *Repository, credits CreditGranter, jwtService *jwt.Service, starterCredits int64) *Service {
	return &Service{repo: repo, credits: credits, jwt: jwtService, starterCredits: starterCredits}
}

// Register creates an account and grants it the starter credit balance.
// The signup grant is keyed by the account id, so a retried registration
// flow cannot grant twice.
func (s *Service) Register(ctx context.Context, email, username, plainPassword string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         "student",
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.credits.EnsureAccount(ctx, a.ID); err != nil {
		return nil, err
	}
	if s.starterCredits > 0 {
		if err := s.credits.Purchase(ctx, a.ID, s.starterCredits, "signup:"+a.ID.String()); err != nil {
			return nil, err
		}
	}

	log.Info().Str("account_id", a.ID.String()).Str("email", a.Email).Msg("account registered")
	return a, nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, *Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !password.Verify(plainPassword, a.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(a.ID, a.Role)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}
