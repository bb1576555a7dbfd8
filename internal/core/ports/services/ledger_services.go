package services

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/dto"
)

// LedgerSvcFacade exposes read access and account management for the ledger.
// Balances are mutated only through workflow transitions; there is no direct
// adjustment endpoint.
type LedgerSvcFacade interface {
	// CreateAccount registers a stock or finance account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creator domain.Actor) (*domain.LedgerAccount, error)
	// Peek returns the current balance for a subject. Never negative.
	Peek(ctx context.Context, subjectRef string) (*domain.LedgerAccount, error)
	// ListAccounts returns all accounts of a subject kind.
	ListAccounts(ctx context.Context, kind domain.LedgerSubjectKind) ([]domain.LedgerAccount, error)
	// ListLowStock returns stock accounts at or under their minimum threshold.
	ListLowStock(ctx context.Context) ([]domain.LedgerAccount, error)
}
