package models

import (
	"github.com/shopspring/decimal"
)

// LedgerAccount is the database row shape for ledger_accounts.
type LedgerAccount struct {
	AccountID    string           `db:"account_id"`
	SubjectKind  string           `db:"subject_kind"`
	SubjectRef   string           `db:"subject_ref"`
	Name         string           `db:"name"`
	Unit         string           `db:"unit"`
	Balance      decimal.Decimal  `db:"balance"`
	MinThreshold *decimal.Decimal `db:"min_threshold"` // Nullable
	Version      int64            `db:"version"`
	AuditFields
}
