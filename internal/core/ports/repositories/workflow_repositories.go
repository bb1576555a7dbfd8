package repositories

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerAdjustment describes the single balance movement a transition carries.
// Delta is negative for debits.
type LedgerAdjustment struct {
	SubjectRef string
	Delta      decimal.Decimal
}

// TransitionWrite is the atomic unit the workflow engine hands to storage:
// the mutated entity (state already advanced, version incremented), the
// version the engine read, the optional ledger movement, and the history
// record to append. All three writes commit together or not at all.
type TransitionWrite struct {
	Entity          domain.WorkflowEntity
	ExpectedVersion int64
	Adjustment      *LedgerAdjustment
	History         domain.HistoryEntry
}

// WorkflowReader provides read access to workflow entities.
type WorkflowReader interface {
	// FindEntityByID loads an entity; for duties the participant list is
	// populated. Returns apperrors.ErrNotFound when absent.
	FindEntityByID(ctx context.Context, entityID string) (*domain.WorkflowEntity, error)
	// ListEntities pages entities of a kind, optionally filtered by state.
	ListEntities(ctx context.Context, kind domain.EntityKind, state *domain.State, limit int, nextToken *string) ([]domain.WorkflowEntity, *string, error)
	// ListHistory returns the entity's audit trail ordered by sequence number.
	ListHistory(ctx context.Context, entityID string) ([]domain.HistoryEntry, error)
}

// WorkflowWriter provides the mutation surface of the workflow store.
type WorkflowWriter interface {
	// SaveEntity inserts a freshly created entity together with its first
	// history record (seq 1, creation).
	SaveEntity(ctx context.Context, entity domain.WorkflowEntity) error
	// CommitTransition applies a TransitionWrite atomically. It locks the
	// entity row, verifies ExpectedVersion (mismatch: apperrors.ErrConflict),
	// applies the ledger adjustment under the non-negative balance invariant
	// (violation: apperrors.ErrInsufficientBalance) and appends the history
	// record with the next per-entity sequence number.
	CommitTransition(ctx context.Context, write TransitionWrite) (*domain.LedgerDelta, error)
	// AddParticipant enrolls a youth into a duty, enforcing capacity and
	// bumping the entity version so in-flight approvals conflict.
	AddParticipant(ctx context.Context, entityID string, participant domain.Participant, actorID string) error
	// SetParticipantStatus records attendance/completion for one youth and
	// bumps the entity version.
	SetParticipantStatus(ctx context.Context, entityID, youthID string, status domain.ParticipantStatus, actorID string) error
}

// WorkflowRepository is the full persistence surface for workflow entities.
type WorkflowRepository interface {
	WorkflowReader
	WorkflowWriter
}
