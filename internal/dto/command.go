package dto

import (
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommandPayload carries the caller-supplied data a transition may need.
type CommandPayload struct {
	Quantity  int64           `json:"quantity,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// Command asks the dispatcher to move one entity to a new state.
type Command struct {
	EntityID string         `json:"entityID" binding:"required,uuid"`
	Kind     string         `json:"kind" binding:"required"`
	ToState  string         `json:"toState" binding:"required"`
	Payload  CommandPayload `json:"payload"`
}

// ToTransitionPayload converts the wire payload into the domain payload.
func (p CommandPayload) ToTransitionPayload() domain.TransitionPayload {
	return domain.TransitionPayload{
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		Reference: p.Reference,
		Note:      p.Note,
	}
}

// TransitionResponse is returned after a successful dispatch.
type TransitionResponse struct {
	Entity      WorkflowEntityResponse `json:"entity"`
	LedgerDelta *LedgerDeltaResponse   `json:"ledgerDelta,omitempty"`
}

// LedgerDeltaResponse reports the balance movement a transition produced.
type LedgerDeltaResponse struct {
	SubjectRef string          `json:"subjectRef"`
	Delta      decimal.Decimal `json:"delta"`
	NewBalance decimal.Decimal `json:"newBalance"`
}
