package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/domain/account"
	"github.com/edusdg/tutoria-api/internal/pkg/intasend"
)

const settledMarkerTTL = 48 * time.Hour

// AccountDirectory resolves account details for checkout parameters.
// Satisfied by *account.Service.
type AccountDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

type Service struct {
	repo     *Repository
	accounts AccountDirectory
	provider *intasend.Client
	packages []Package
	currency string
	redis    *redis.Client // optional dedup fast path; nil disables it
}

func NewService(repo *Repository, accounts AccountDirectory, provider *intasend.Client, packages []Package, currency string, rdb *redis.Client) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		provider: provider,
		packages: packages,
		currency: currency,
		redis:    rdb,
	}
}

// Packages returns the configured purchasable bundles.
func (s *Service) Packages() []Package {
	return s.packages
}

func (s *Service) packageByCredits(credits int64) (Package, bool) {
	for _, p := range s.packages {
		if p.Credits == credits {
			return p, true
		}
	}
	return Package{}, false
}

// Checkout is what purchase initiation hands back to the frontend.
type Checkout struct {
	PaymentID    uuid.UUID               `json:"payment_id"`
	CheckoutData intasend.CheckoutParams `json:"checkout_data"`
}

// CreateCheckout creates a pending payment for one of the configured
// credit packages and returns the provider checkout parameters. The new
// payment's id is the api_ref the settlement webhook correlates on.
func (s *Service) CreateCheckout(ctx context.Context, accountID uuid.UUID, credits int64) (*Checkout, error) {
	pkg, ok := s.packageByCredits(credits)
	if !ok {
		return nil, ErrInvalidPackage
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:               uuid.New(),
		AccountID:        accountID,
		AmountCents:      pkg.PriceCents,
		Currency:         s.currency,
		CreditsPurchased: pkg.Credits,
		Status:           StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("account_id", accountID.String()).
		Int64("credits", pkg.Credits).
		Int64("amount_cents", pkg.PriceCents).
		Msg("checkout created")

	return &Checkout{
		PaymentID:    p.ID,
		CheckoutData: s.provider.BuildCheckout(p.ID, pkg.PriceCents, s.currency, acc.Email, acc.Username, pkg.Credits),
	}, nil
}

// Settle applies a verified completion notification exactly once. The
// redis marker only short-circuits obvious replays; the transactional
// status gate in the repository stays authoritative.
func (s *Service) Settle(ctx context.Context, paymentID uuid.UUID, providerRef string) (*Payment, error) {
	if s.redis != nil {
		seen, err := s.redis.Exists(ctx, settledKey(paymentID)).Result()
		if err == nil && seen > 0 {
			p, gerr := s.repo.GetByID(ctx, paymentID)
			if gerr != nil {
				return nil, gerr
			}
			return p, ErrAlreadySettled
		}
	}

	p, err := s.repo.Settle(ctx, paymentID, providerRef)
	if err != nil {
		return p, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, settledKey(paymentID), 1, settledMarkerTTL).Err(); err != nil {
			log.Warn().Err(err).Str("payment_id", paymentID.String()).Msg("settled marker write failed")
		}
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("account_id", p.AccountID.String()).
		Str("provider_ref", providerRef).
		Int64("credits", p.CreditsPurchased).
		Msg("payment settled")
	return p, nil
}

// MarkFailed records a provider-reported failure for a pending payment.
// Terminal payments are left untouched.
func (s *Service) MarkFailed(ctx context.Context, paymentID uuid.UUID) error {
	err := s.repo.MarkFailed(ctx, paymentID)
	if err != nil && !errors.Is(err, ErrTerminalState) {
		return err
	}
	if err == nil {
		log.Info().Str("payment_id", paymentID.String()).Msg("payment marked failed")
	}
	return err
}

// Refund is the administrative completed -> refunded transition.
func (s *Service) Refund(ctx context.Context, paymentID uuid.UUID) error {
	if err := s.repo.MarkRefunded(ctx, paymentID); err != nil {
		return err
	}
	log.Info().Str("payment_id", paymentID.String()).Msg("payment marked refunded")
	return nil
}

func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

func settledKey(paymentID uuid.UUID) string {
	return "payments:settled:" + paymentID.String()
}
