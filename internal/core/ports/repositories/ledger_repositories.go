package repositories

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerRepository is the persistence surface for ledger accounts.
//
// The InTx methods take an open pgx transaction so the workflow repository can
// compose a balance adjustment with an entity transition in one atomic unit;
// they must never commit or roll back themselves.
type LedgerRepository interface {
	// SaveAccount inserts a new account. Duplicate subject refs fail with
	// apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.LedgerAccount) error
	// FindAccountBySubject returns the account for a material or organization.
	FindAccountBySubject(ctx context.Context, subjectRef string) (*domain.LedgerAccount, error)
	// ListAccounts returns all accounts of one subject kind.
	ListAccounts(ctx context.Context, kind domain.LedgerSubjectKind) ([]domain.LedgerAccount, error)

	// FindAccountBySubjectForUpdate locks the account row for the duration of
	// the transaction.
	FindAccountBySubjectForUpdate(ctx context.Context, tx pgx.Tx, subjectRef string) (*domain.LedgerAccount, error)
	// AdjustBalanceInTx applies delta to the locked account. A delta that
	// would drive the balance negative fails with
	// apperrors.ErrInsufficientBalance and writes nothing.
	AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, subjectRef string, delta decimal.Decimal, actorID string) (*domain.LedgerDelta, error)
}
