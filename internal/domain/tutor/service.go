package tutor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/domain/ledger"
	"github.com/edusdg/tutoria-api/internal/pkg/aitutor"
	"github.com/edusdg/tutoria-api/internal/pkg/metrics"
)

// CreditLedger is the slice of the ledger service the billing protocol
// needs. Satisfied by *ledger.Service.
type CreditLedger interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error
	Refund(ctx context.Context, accountID uuid.UUID, amount int64, referenceID string) error
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// InteractionStore persists audit records of successful billed actions.
// Satisfied by *Repository.
type InteractionStore interface {
	Insert(ctx context.Context, in *Interaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Interaction, error)
}

type Service struct {
	credits      CreditLedger
	interactions InteractionStore
	ai           aitutor.Client
}

func NewService(credits CreditLedger, interactions InteractionStore, ai aitutor.Client) *Service {
	return &Service{credits: credits, interactions: interactions, ai: ai}
}

// Ask answers a free-form student question. Costs 1 credit.
func (s *Service) Ask(ctx context.Context, accountID uuid.UUID, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidRequest
	}
	return s.runBilled(ctx, accountID, ActionTutor, buildTutorPrompt(question), question)
}

// Explain produces a structured concept explanation. Costs 2 credits.
func (s *Service) Explain(ctx context.Context, accountID uuid.UUID, topic, level, extra string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrInvalidRequest
	}
	if level == "" {
		level = "beginner"
	}
	if extra == "" {
		extra = "general education"
	}
	prompt := buildExplainPrompt(topic, level, extra)
	recorded := "Explain: " + topic + " (" + level + " level)"
	return s.runBilled(ctx, accountID, ActionExplain, prompt, recorded)
}

// GenerateQuiz produces a quiz in JSON form. Costs 3 credits.
func (s *Service) GenerateQuiz(ctx context.Context, accountID uuid.UUID, topic, difficulty string, numQuestions int) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrInvalidRequest
	}
	if difficulty == "" {
		difficulty = "medium"
	}
	if numQuestions <= 0 {
		numQuestions = 5
	}
	if numQuestions > 10 {
		numQuestions = 10
	}
	prompt := buildQuizPrompt(topic, difficulty, numQuestions)
	recorded := "Quiz: " + topic + " (" + difficulty + ")"
	return s.runBilled(ctx, accountID, ActionQuiz, prompt, recorded)
}

// runBilled is the debit-before/refund-on-failure protocol shared by all
// action kinds:
//  1. debit the fixed cost (aborts on insufficient credits, no external call);
//  2. invoke the external AI call without holding any ledger lock;
//  3. on success persist the audit record and return it;
//  4. on any failure after the debit, refund exactly once, keyed by the
//     attempt reference so a retried failure path cannot double-refund.
func (s *Service) runBilled(ctx context.Context, accountID uuid.UUID, kind ActionKind, prompt, recordedPrompt string) (*Result, error) {
	cost := kind.Cost()
	attemptRef := "interaction:" + uuid.New().String()

	if err := s.credits.Debit(ctx, accountID, cost, attemptRef); err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}
	metrics.CreditsDebited.WithLabelValues(string(kind)).Add(float64(cost))

	start := time.Now()
	answer, aiErr := s.ai.Generate(ctx, prompt)

	if aiErr == nil {
		metrics.AIRequestDuration.WithLabelValues(string(kind), "ok").Observe(time.Since(start).Seconds())

		in := &Interaction{
			AccountID:   accountID,
			Prompt:      recordedPrompt,
			Response:    answer,
			ModelUsed:   s.ai.Model(),
			CreditsUsed: cost,
		}
		if err := s.interactions.Insert(ctx, in); err == nil {
			balance, berr := s.credits.GetBalance(ctx, accountID)
			if berr != nil {
				log.Error().Err(berr).Str("account_id", accountID.String()).Msg("balance read after billed action failed")
			}
			return &Result{Interaction: in, CreditsRemaining: balance}, nil
		} else {
			aiErr = err
		}
	} else {
		metrics.AIRequestDuration.WithLabelValues(string(kind), "error").Observe(time.Since(start).Seconds())
	}

	// The action did not produce a persisted, billable result: give the
	// debited credits back. The attempt reference makes this exactly-once.
	if rerr := s.credits.Refund(ctx, accountID, cost, attemptRef); rerr != nil {
		log.Error().Err(rerr).
			Str("account_id", accountID.String()).
			Str("reference_id", attemptRef).
			Int64("amount", cost).
			Msg("refund after failed billed action did not apply")
		return nil, rerr
	}
	metrics.CreditsRefunded.WithLabelValues(string(kind)).Add(float64(cost))

	log.Warn().Err(aiErr).
		Str("account_id", accountID.String()).
		Str("action", string(kind)).
		Msg("billed action failed, credits refunded")
	return nil, ErrAIServiceFailed
}

// History returns the account's interaction records, newest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Interaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.interactions.ListByAccount(ctx, accountID, limit, offset)
}
