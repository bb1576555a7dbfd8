package services

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/dto"
)

// TransitionResult is what a successful transition yields: the updated entity,
// the ledger movement (nil for pure state changes) and the event to publish.
type TransitionResult struct {
	Entity *domain.WorkflowEntity
	Delta  *domain.LedgerDelta
	Event  domain.TransitionEvent
}

// WorkflowEngineSvc executes declared transitions against workflow entities.
// It is the only component allowed to change an entity's state.
type WorkflowEngineSvc interface {
	// ApplyTransition moves the entity to toState if a transition rule allows
	// it for the given actor. State change, ledger effect and audit record
	// commit atomically. Error taxonomy: ErrNotFound, ErrInvalidTransition,
	// ErrForbidden, ErrValidation, ErrInsufficientBalance, ErrConflict,
	// ErrStorageTimeout.
	ApplyTransition(ctx context.Context, entityID string, actor domain.Actor, toState domain.State, payload domain.TransitionPayload) (*TransitionResult, error)
}

// EntitySvcFacade creates and reads workflow entities. Creation puts an entity
// into its kind's initial state; every later change goes through the engine.
type EntitySvcFacade interface {
	CreateSupplyRequest(ctx context.Context, req dto.CreateSupplyRequestRequest, creatorID string) (*domain.WorkflowEntity, error)
	CreateMaterialRequest(ctx context.Context, req dto.CreateMaterialRequestRequest, creator domain.Actor) (*domain.WorkflowEntity, error)
	CreateDonation(ctx context.Context, req dto.CreateDonationRequest, donorID string) (*domain.WorkflowEntity, error)
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest, customerID string) (*domain.WorkflowEntity, error)
	CreateDuty(ctx context.Context, req dto.CreateDutyRequest, creator domain.Actor) (*domain.WorkflowEntity, error)

	GetEntity(ctx context.Context, entityID string) (*domain.WorkflowEntity, error)
	ListEntities(ctx context.Context, kind domain.EntityKind, params dto.ListEntitiesParams) (*dto.ListEntitiesResponse, error)
	GetHistory(ctx context.Context, entityID string) ([]domain.HistoryEntry, error)

	// EnrollYouth adds a youth to an open duty (capacity permitting).
	EnrollYouth(ctx context.Context, dutyID string, youthID string) error
	// MarkAttendance records a participant sub-state; only the coordinator may call it.
	MarkAttendance(ctx context.Context, dutyID string, req dto.AttendanceRequest, actor domain.Actor) error
}
