package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/edusdg/tutoria-api/internal/domain/ledger"
)

// fakeLedger is an in-memory CreditLedger with the same idempotency and
// bounds semantics as the real repository.
type fakeLedger struct {
	balance int64
	refs    map[string]int64 // "type:ref" -> delta
	debits  int
	refunds int
}

func newFakeLedger(balance int64) *fakeLedger {
	return &fakeLedger{balance: balance, refs: make(map[string]int64)}
}

func (f *fakeLedger) apply(delta int64, txType, ref string) error {
	key := txType + "|" + ref
	if existing, ok := f.refs[key]; ok {
		if existing != delta {
			return ledger.ErrReferenceConflict
		}
		return nil
	}
	if f.balance+delta < 0 {
		return ledger.ErrInsufficientCredits
	}
	f.balance += delta
	f.refs[key] = delta
	return nil
}

func (f *fakeLedger) Debit(_ context.Context, _ uuid.UUID, amount int64, ref string) error {
	f.debits++
	return f.apply(-amount, "debit", ref)
}

func (f *fakeLedger) Refund(_ context.Context, _ uuid.UUID, amount int64, ref string) error {
	f.refunds++
	return f.apply(amount, "refund", ref)
}

func (f *fakeLedger) GetBalance(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.balance, nil
}

type fakeStore struct {
	records   []*Interaction
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, in *Interaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	in.ID = uuid.New()
	f.records = append(f.records, in)
	return nil
}

func (f *fakeStore) ListByAccount(_ context.Context, _ uuid.UUID, _, _ int) ([]Interaction, error) {
	out := make([]Interaction, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

type fakeAI struct {
	answer string
	err    error
	calls  int
}

func (f *fakeAI) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeAI) Model() string { return "fake-model" }

func TestAskSuccessDebitsAndRecords(t *testing.T) {
	led := newFakeLedger(10)
	store := &fakeStore{}
	ai := &fakeAI{answer: "Mitochondria are the powerhouse of the cell."}
	svc := NewService(led, store, ai)

	result, err := svc.Ask(context.Background(), uuid.New(), "What are mitochondria?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CreditsRemaining != 9 {
		t.Fatalf("expected balance 9 after cost-1 action, got %d", result.CreditsRemaining)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected exactly one interaction record, got %d", len(store.records))
	}
	if store.records[0].CreditsUsed != 1 {
		t.Fatalf("expected credits_used 1, got %d", store.records[0].CreditsUsed)
	}
	if led.refunds != 0 {
		t.Fatalf("refund must never run on success, got %d refunds", led.refunds)
	}
}

func TestAskAIFailureRefunds(t *testing.T) {
	led := newFakeLedger(10)
	store := &fakeStore{}
	ai := &fakeAI{err: fmt.Errorf("inference backend down")}
	svc := NewService(led, store, ai)

	_, err := svc.Ask(context.Background(), uuid.New(), "What are mitochondria?")
	if !errors.Is(err, ErrAIServiceFailed) {
		t.Fatalf("expected ErrAIServiceFailed, got %v", err)
	}
	if led.balance != 10 {
		t.Fatalf("expected balance restored to 10, got %d", led.balance)
	}
	if len(store.records) != 0 {
		t.Fatalf("no interaction record may exist for a failed action, got %d", len(store.records))
	}
	if led.refunds != 1 {
		t.Fatalf("expected exactly one refund, got %d", led.refunds)
	}
}

func TestAskInsufficientCreditsSkipsAICall(t *testing.T) {
	led := newFakeLedger(0)
	store := &fakeStore{}
	ai := &fakeAI{answer: "unreachable"}
	svc := NewService(led, store, ai)

	_, err := svc.Explain(context.Background(), uuid.New(), "photosynthesis", "beginner", "")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if ai.calls != 0 {
		t.Fatalf("external action must never be invoked without a debit, got %d calls", ai.calls)
	}
	if led.balance != 0 {
		t.Fatalf("expected balance unchanged at 0, got %d", led.balance)
	}
	if len(store.records) != 0 {
		t.Fatalf("expected no records, got %d", len(store.records))
	}
}

func TestAskEmptyQuestionRejectedBeforeLedger(t *testing.T) {
	led := newFakeLedger(10)
	svc := NewService(led, &fakeStore{}, &fakeAI{answer: "x"})

	_, err := svc.Ask(context.Background(), uuid.New(), "   ")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if led.debits != 0 {
		t.Fatalf("ledger must not be touched for invalid input, got %d debits", led.debits)
	}
}

func TestRecordInsertFailureRefunds(t *testing.T) {
	led := newFakeLedger(10)
	store := &fakeStore{insertErr: fmt.Errorf("db gone")}
	svc := NewService(led, store, &fakeAI{answer: "ok"})

	_, err := svc.GenerateQuiz(context.Background(), uuid.New(), "fractions", "easy", 5)
	if !errors.Is(err, ErrAIServiceFailed) {
		t.Fatalf("expected ErrAIServiceFailed, got %v", err)
	}
	if led.balance != 10 {
		t.Fatalf("expected cost-3 debit fully refunded, balance 10, got %d", led.balance)
	}
}

func TestActionCosts(t *testing.T) {
	cases := []struct {
		kind ActionKind
		cost int64
	}{
		{ActionTutor, 1},
		{ActionExplain, 2},
		{ActionQuiz, 3},
	}
	for _, tc := range cases {
		if got := tc.kind.Cost(); got != tc.cost {
			t.Errorf("%s: expected cost %d, got %d", tc.kind, tc.cost, got)
		}
	}
}

func TestQuizQuestionCountClamped(t *testing.T) {
	led := newFakeLedger(10)
	store := &fakeStore{}
	svc := NewService(led, store, &fakeAI{answer: `{"questions":[]}`})

	if _, err := svc.GenerateQuiz(context.Background(), uuid.New(), "algebra", "hard", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if led.balance != 7 {
		t.Fatalf("expected cost-3 debit, balance 7, got %d", led.balance)
	}
}
