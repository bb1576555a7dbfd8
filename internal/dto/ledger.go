package dto

import (
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest registers a new ledger account (stock or finance).
type CreateAccountRequest struct {
	SubjectKind  string           `json:"subjectKind" binding:"required,oneof=STOCK FINANCE"`
	SubjectRef   string           `json:"subjectRef" binding:"required"`
	Name         string           `json:"name" binding:"required"`
	Unit         string           `json:"unit"`
	Balance      decimal.Decimal  `json:"balance"`
	MinThreshold *decimal.Decimal `json:"minThreshold,omitempty"`
}

// LedgerAccountResponse is the wire shape of a ledger account.
type LedgerAccountResponse struct {
	AccountID    string           `json:"accountID"`
	SubjectKind  string           `json:"subjectKind"`
	SubjectRef   string           `json:"subjectRef"`
	Name         string           `json:"name"`
	Unit         string           `json:"unit,omitempty"`
	Balance      decimal.Decimal  `json:"balance"`
	MinThreshold *decimal.Decimal `json:"minThreshold,omitempty"`
	BelowMin     bool             `json:"belowMin"`
}

// ToLedgerAccountResponse converts a domain account to its wire shape.
func ToLedgerAccountResponse(a *domain.LedgerAccount) LedgerAccountResponse {
	return LedgerAccountResponse{
		AccountID:    a.AccountID,
		SubjectKind:  string(a.SubjectKind),
		SubjectRef:   a.SubjectRef,
		Name:         a.Name,
		Unit:         a.Unit,
		Balance:      a.Balance,
		MinThreshold: a.MinThreshold,
		BelowMin:     a.BelowThreshold(),
	}
}

// ToLedgerAccountResponses converts a slice of accounts.
func ToLedgerAccountResponses(accounts []domain.LedgerAccount) []LedgerAccountResponse {
	out := make([]LedgerAccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToLedgerAccountResponse(&accounts[i])
	}
	return out
}
