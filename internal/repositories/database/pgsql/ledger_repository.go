package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	"github.com/matbus-aora/aora-backend/internal/models"
	"github.com/matbus-aora/aora-backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger account data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// SaveAccount inserts a new ledger account.
func (r *PgxLedgerRepository) SaveAccount(ctx context.Context, account domain.LedgerAccount) error {
	modelAccount := mapping.ToModelLedgerAccount(account)
	query := `
		INSERT INTO ledger_accounts (
			account_id, subject_kind, subject_ref, name, unit, balance, min_threshold, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAccount.AccountID,
		modelAccount.SubjectKind,
		modelAccount.SubjectRef,
		modelAccount.Name,
		modelAccount.Unit,
		modelAccount.Balance,
		modelAccount.MinThreshold,
		modelAccount.Version,
		modelAccount.CreatedAt,
		modelAccount.CreatedBy,
		modelAccount.LastUpdatedAt,
		modelAccount.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return apperrors.NewAppError(409, "ledger account for subject "+account.SubjectRef+" already exists", apperrors.ErrDuplicate)
			}
		}
		return wrapDBError(err, "failed to insert ledger account "+modelAccount.AccountID)
	}
	return nil
}

const ledgerAccountColumns = `account_id, subject_kind, subject_ref, name, unit, balance, min_threshold, version,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanLedgerAccount(row pgx.Row) (models.LedgerAccount, error) {
	var m models.LedgerAccount
	err := row.Scan(
		&m.AccountID,
		&m.SubjectKind,
		&m.SubjectRef,
		&m.Name,
		&m.Unit,
		&m.Balance,
		&m.MinThreshold,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindAccountBySubject retrieves the account tracking a material or organization.
func (r *PgxLedgerRepository) FindAccountBySubject(ctx context.Context, subjectRef string) (*domain.LedgerAccount, error) {
	query := `
		SELECT ` + ledgerAccountColumns + `
		FROM ledger_accounts
		WHERE subject_ref = $1;
	`
	modelAccount, err := scanLedgerAccount(r.Pool.QueryRow(ctx, query, subjectRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err, "failed to find ledger account for subject "+subjectRef)
	}

	domainAccount := mapping.ToDomainLedgerAccount(modelAccount)
	return &domainAccount, nil
}

// ListAccounts returns every account of one subject kind, ordered by name.
func (r *PgxLedgerRepository) ListAccounts(ctx context.Context, kind domain.LedgerSubjectKind) ([]domain.LedgerAccount, error) {
	query := `
		SELECT ` + ledgerAccountColumns + `
		FROM ledger_accounts
		WHERE subject_kind = $1
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, wrapDBError(err, "failed to query ledger accounts of kind "+string(kind))
	}
	defer rows.Close()

	accounts := []domain.LedgerAccount{}
	for rows.Next() {
		m, err := scanLedgerAccount(rows)
		if err != nil {
			return nil, wrapDBError(err, "failed to scan ledger account row")
		}
		accounts = append(accounts, mapping.ToDomainLedgerAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "error iterating ledger account rows")
	}

	return accounts, nil
}

// FindAccountBySubjectForUpdate locks the account row within the given transaction.
func (r *PgxLedgerRepository) FindAccountBySubjectForUpdate(ctx context.Context, tx pgx.Tx, subjectRef string) (*domain.LedgerAccount, error) {
	query := `
		SELECT ` + ledgerAccountColumns + `
		FROM ledger_accounts
		WHERE subject_ref = $1
		FOR UPDATE;
	`
	modelAccount, err := scanLedgerAccount(tx.QueryRow(ctx, query, subjectRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err, "failed to lock ledger account for subject "+subjectRef)
	}

	domainAccount := mapping.ToDomainLedgerAccount(modelAccount)
	return &domainAccount, nil
}

// AdjustBalanceInTx applies delta to the already-locked account row. The
// caller owns the transaction; this method never commits or rolls back.
func (r *PgxLedgerRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, subjectRef string, delta decimal.Decimal, actorID string) (*domain.LedgerDelta, error) {
	account, err := r.FindAccountBySubjectForUpdate(ctx, tx, subjectRef)
	if err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, apperrors.NewAppError(422, "balance of subject "+subjectRef+" would go negative", apperrors.ErrInsufficientBalance)
	}

	now := time.Now()
	updateQuery := `
		UPDATE ledger_accounts
		SET balance = $1, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE subject_ref = $4;
	`
	tag, err := tx.Exec(ctx, updateQuery, newBalance, now, actorID, subjectRef)
	if err != nil {
		return nil, wrapDBError(err, "failed to update balance for subject "+subjectRef)
	}
	if tag.RowsAffected() != 1 {
		return nil, apperrors.NewAppError(500, "balance update for subject "+subjectRef+" affected no rows", nil)
	}

	return &domain.LedgerDelta{
		SubjectRef: subjectRef,
		Delta:      delta,
		NewBalance: newBalance,
	}, nil
}
