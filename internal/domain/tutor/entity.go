package tutor

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies a billable AI action. The kinds differ only in
// credit cost and prompt shape; the billing protocol is shared.
type ActionKind string

const (
	ActionTutor   ActionKind = "tutor"
	ActionExplain ActionKind = "explain"
	ActionQuiz    ActionKind = "quiz"
)

var actionCosts = map[ActionKind]int64{
	ActionTutor:   1,
	ActionExplain: 2,
	ActionQuiz:    3,
}

// Cost returns the fixed credit cost of the action kind.
func (k ActionKind) Cost() int64 {
	return actionCosts[k]
}

// Interaction is the immutable audit record of one successfully billed
// AI action. Created only after the external call succeeded and its cost
// was debited.
type Interaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	Prompt      string    `db:"prompt" json:"prompt"`
	Response    string    `db:"response" json:"response"`
	ModelUsed   string    `db:"model_used" json:"model_used"`
	CreditsUsed int64     `db:"credits_used" json:"credits_used"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Result is what a successful billed action returns to the caller.
type Result struct {
	Interaction      *Interaction
	CreditsRemaining int64
}
