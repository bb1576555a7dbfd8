package mapping

import (
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/models"
)

// ToModelLedgerAccount converts a domain LedgerAccount to its row shape.
func ToModelLedgerAccount(d domain.LedgerAccount) models.LedgerAccount {
	return models.LedgerAccount{
		AccountID:    d.AccountID,
		SubjectKind:  string(d.SubjectKind),
		SubjectRef:   d.SubjectRef,
		Name:         d.Name,
		Unit:         d.Unit,
		Balance:      d.Balance,
		MinThreshold: d.MinThreshold,
		Version:      d.Version,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerAccount converts a row into a domain LedgerAccount.
func ToDomainLedgerAccount(m models.LedgerAccount) domain.LedgerAccount {
	return domain.LedgerAccount{
		AccountID:    m.AccountID,
		SubjectKind:  domain.LedgerSubjectKind(m.SubjectKind),
		SubjectRef:   m.SubjectRef,
		Name:         m.Name,
		Unit:         m.Unit,
		Balance:      m.Balance,
		MinThreshold: m.MinThreshold,
		Version:      m.Version,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
