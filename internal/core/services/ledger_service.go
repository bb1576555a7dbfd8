package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// LedgerService manages ledger accounts. Balances themselves only move
// through workflow transitions; this service registers accounts and reads.
type LedgerService struct {
	ledgerRepo portsrepo.LedgerRepository
}

func NewLedgerService(ledgerRepo portsrepo.LedgerRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo}
}

// Ensure LedgerService implements portssvc.LedgerSvcFacade
var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// CreateAccount registers a stock or finance account. Only the inventory
// manager may create stock accounts, only the finance manager money accounts.
func (s *LedgerService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creator domain.Actor) (*domain.LedgerAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.LedgerSubjectKind(req.SubjectKind)
	switch kind {
	case domain.SubjectStock:
		if creator.Role != domain.RoleInventory {
			return nil, fmt.Errorf("%w: only the inventory manager may create stock accounts", apperrors.ErrForbidden)
		}
	case domain.SubjectFinance:
		if creator.Role != domain.RoleFinanceManager {
			return nil, fmt.Errorf("%w: only the finance manager may create money accounts", apperrors.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: unknown subject kind %s", apperrors.ErrValidation, req.SubjectKind)
	}

	if req.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	account := domain.LedgerAccount{
		AccountID:    uuid.NewString(),
		SubjectKind:  kind,
		SubjectRef:   req.SubjectRef,
		Name:         req.Name,
		Unit:         req.Unit,
		Balance:      req.Balance,
		MinThreshold: req.MinThreshold,
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.ActorID,
		},
	}

	if err := s.ledgerRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save ledger account", slog.String("error", err.Error()), slog.String("subject_ref", req.SubjectRef))
		return nil, err
	}

	logger.Info("Ledger account created",
		slog.String("account_id", account.AccountID),
		slog.String("subject_kind", string(kind)),
		slog.String("subject_ref", account.SubjectRef))
	return &account, nil
}

// Peek returns the current balance for a subject.
func (s *LedgerService) Peek(ctx context.Context, subjectRef string) (*domain.LedgerAccount, error) {
	return s.ledgerRepo.FindAccountBySubject(ctx, subjectRef)
}

// ListAccounts returns all accounts of a subject kind.
func (s *LedgerService) ListAccounts(ctx context.Context, kind domain.LedgerSubjectKind) ([]domain.LedgerAccount, error) {
	if kind != domain.SubjectStock && kind != domain.SubjectFinance {
		return nil, fmt.Errorf("%w: unknown subject kind %s", apperrors.ErrValidation, kind)
	}
	return s.ledgerRepo.ListAccounts(ctx, kind)
}

// ListLowStock returns stock accounts whose balance has fallen under their
// configured minimum threshold.
func (s *LedgerService) ListLowStock(ctx context.Context) ([]domain.LedgerAccount, error) {
	accounts, err := s.ledgerRepo.ListAccounts(ctx, domain.SubjectStock)
	if err != nil {
		return nil, err
	}

	low := make([]domain.LedgerAccount, 0)
	for _, a := range accounts {
		if a.BelowThreshold() {
			low = append(low, a)
		}
	}
	return low, nil
}
