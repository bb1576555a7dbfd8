package domain

import "github.com/shopspring/decimal"

// LedgerSubjectKind distinguishes stock accounts (per training material) from
// money accounts (per organization).
type LedgerSubjectKind string

const (
	SubjectStock   LedgerSubjectKind = "STOCK"
	SubjectFinance LedgerSubjectKind = "FINANCE"
)

// LedgerAccount is a non-negative numeric balance mutated only through atomic
// adjustments inside a workflow transition's transaction.
type LedgerAccount struct {
	AccountID    string            `json:"accountID"` // Primary key (UUID)
	SubjectKind  LedgerSubjectKind `json:"subjectKind"`
	SubjectRef   string            `json:"subjectRef"` // material ID or organization ID
	Name         string            `json:"name"`
	Unit         string            `json:"unit,omitempty"`       // e.g. "pcs" for stock, "KES" for money
	Balance      decimal.Decimal   `json:"balance"`              // invariant: >= 0
	MinThreshold *decimal.Decimal  `json:"minThreshold,omitempty"` // low-stock alert level
	Version      int64             `json:"version"`
	AuditFields
}

// BelowThreshold reports whether the account's balance has fallen under its
// configured minimum stock level.
func (a LedgerAccount) BelowThreshold() bool {
	return a.MinThreshold != nil && a.Balance.LessThan(*a.MinThreshold)
}

// LedgerDelta summarizes the balance movement a transition produced.
type LedgerDelta struct {
	SubjectRef string          `json:"subjectRef"`
	Delta      decimal.Decimal `json:"delta"` // negative for debits
	NewBalance decimal.Decimal `json:"newBalance"`
}
