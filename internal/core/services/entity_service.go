package services

import (
	"context"
	"errors"
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
	"github.com/shopspring/decimal"
)

// EntityService creates and reads workflow entities. Creation is the only
// write that bypasses the transition engine, and it always lands in the
// kind's declared initial state.
type EntityService struct {
	workflowRepo portsrepo.WorkflowRepository
	ledgerRepo   portsrepo.LedgerRepository
	// orgSubjectRef names the organization's finance account; donations and
	// bookings are money entities and carry it as their ledger subject.
	orgSubjectRef string
}

func NewEntityService(workflowRepo portsrepo.WorkflowRepository, ledgerRepo portsrepo.LedgerRepository, orgSubjectRef string) *EntityService {
	return &EntityService{
		workflowRepo:  workflowRepo,
		ledgerRepo:    ledgerRepo,
		orgSubjectRef: orgSubjectRef,
	}
}

// Ensure EntityService implements portssvc.EntitySvcFacade
var _ portssvc.EntitySvcFacade = (*EntityService)(nil)

func newEntity(kind domain.EntityKind, ownerID string) domain.WorkflowEntity {
	now := time.Now()
	return domain.WorkflowEntity{
		EntityID: uuid.NewString(),
		Kind:     kind,
		State:    domain.InitialState(kind),
		OwnerID:  ownerID,
		Version:  1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
}

// saveEntity persists a freshly built entity and logs the outcome.
func (s *EntityService) saveEntity(ctx context.Context, entity domain.WorkflowEntity) (*domain.WorkflowEntity, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.workflowRepo.SaveEntity(ctx, entity); err != nil {
		logger.Error("Failed to save entity", slog.String("error", err.Error()), slog.String("kind", string(entity.Kind)))
		return nil, err
	}
	logger.Info("Entity created",
		slog.String("entity_id", entity.EntityID),
		slog.String("kind", string(entity.Kind)),
		slog.String("state", string(entity.State)))
	return &entity, nil
}

// requireStockAccount verifies the material has a ledger account before any
// entity referencing it is created.
func (s *EntityService) requireStockAccount(ctx context.Context, materialID string) error {
	account, err := s.ledgerRepo.FindAccountBySubject(ctx, materialID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("no ledger account for material " + materialID)
		}
		return err
	}
	if account.SubjectKind != domain.SubjectStock {
		return fmt.Errorf("%w: subject %s is not a stock account", apperrors.ErrValidation, materialID)
	}
	return nil
}

// CreateSupplyRequest opens a procurement request for a material.
func (s *EntityService) CreateSupplyRequest(ctx context.Context, req dto.CreateSupplyRequestRequest, creatorID string) (*domain.WorkflowEntity, error) {
	if err := s.requireStockAccount(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	entity := newEntity(domain.KindSupplyRequest, creatorID)
	entity.SubjectRef = req.MaterialID
	entity.Quantity = req.Quantity
	entity.Note = req.Note
	return s.saveEntity(ctx, entity)
}

// CreateMaterialRequest is a trainer asking for stock. Only trainers may open one.
func (s *EntityService) CreateMaterialRequest(ctx context.Context, req dto.CreateMaterialRequestRequest, creator domain.Actor) (*domain.WorkflowEntity, error) {
	if creator.Role != domain.RoleTrainer {
		return nil, fmt.Errorf("%w: only trainers may request materials", apperrors.ErrForbidden)
	}
	if err := s.requireStockAccount(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	entity := newEntity(domain.KindMaterialRequest, creator.ActorID)
	entity.SubjectRef = req.MaterialID
	entity.Quantity = req.Quantity
	entity.Note = req.Note
	return s.saveEntity(ctx, entity)
}

// CreateDonation records an M-PESA donation awaiting finance verification.
// The code format is checked again at approval time against the stored value.
func (s *EntityService) CreateDonation(ctx context.Context, req dto.CreateDonationRequest, donorID string) (*domain.WorkflowEntity, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: donation amount must be positive", apperrors.ErrValidation)
	}

	entity := newEntity(domain.KindDonation, donorID)
	entity.SubjectRef = s.orgSubjectRef
	entity.Amount = req.Amount
	entity.Reference = req.MpesaCode
	return s.saveEntity(ctx, entity)
}

// CreateBooking opens a service booking with its payment reference attached.
func (s *EntityService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest, customerID string) (*domain.WorkflowEntity, error) {
	if req.TotalPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: booking price must be positive", apperrors.ErrValidation)
	}

	entity := newEntity(domain.KindBooking, customerID)
	entity.SubjectRef = s.orgSubjectRef
	entity.Title = req.ServiceTitle
	entity.Quantity = req.Hours
	entity.Amount = req.TotalPrice
	entity.Reference = req.PaymentCode
	return s.saveEntity(ctx, entity)
}

// CreateDuty opens a community-service duty. Only the coordinator or duties
// manager may open one.
func (s *EntityService) CreateDuty(ctx context.Context, req dto.CreateDutyRequest, creator domain.Actor) (*domain.WorkflowEntity, error) {
	if creator.Role != domain.RoleCoordinator && creator.Role != domain.RoleDutiesManager {
		return nil, fmt.Errorf("%w: only duty staff may open duties", apperrors.ErrForbidden)
	}

	entity := newEntity(domain.KindDuty, creator.ActorID)
	entity.Title = req.DutyName
	entity.Note = req.Description
	entity.SubjectRef = req.Location
	entity.Capacity = req.Capacity
	entity.ScheduledAt = req.Date
	return s.saveEntity(ctx, entity)
}

// GetEntity loads a single entity with participants populated for duties.
func (s *EntityService) GetEntity(ctx context.Context, entityID string) (*domain.WorkflowEntity, error) {
	return s.workflowRepo.FindEntityByID(ctx, entityID)
}

// ListEntities pages a kind's entities, optionally filtered by state. An
// unknown state for the kind is a validation error, not an empty list.
func (s *EntityService) ListEntities(ctx context.Context, kind domain.EntityKind, params dto.ListEntitiesParams) (*dto.ListEntitiesResponse, error) {
	var state *domain.State
	if params.State != nil && *params.State != "" {
		candidate := domain.State(*params.State)
		if !stateBelongsToKind(kind, candidate) {
			return nil, fmt.Errorf("%w: state %s is not valid for %s", apperrors.ErrValidation, candidate, kind)
		}
		state = &candidate
	}

	entities, nextToken, err := s.workflowRepo.ListEntities(ctx, kind, state, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListEntitiesResponse{
		Entities:  make([]dto.WorkflowEntityResponse, len(entities)),
		NextToken: nextToken,
	}
	for i := range entities {
		resp.Entities[i] = dto.ToWorkflowEntityResponse(&entities[i])
	}
	return resp, nil
}

func stateBelongsToKind(kind domain.EntityKind, state domain.State) bool {
	for _, s := range domain.StatesFor(kind) {
		if s == state {
			return true
		}
	}
	return false
}

// GetHistory returns the entity's full audit trail.
func (s *EntityService) GetHistory(ctx context.Context, entityID string) ([]domain.HistoryEntry, error) {
	if _, err := s.workflowRepo.FindEntityByID(ctx, entityID); err != nil {
		return nil, err
	}
	return s.workflowRepo.ListHistory(ctx, entityID)
}

// EnrollYouth adds a youth to a duty that is still open for enrollment.
func (s *EntityService) EnrollYouth(ctx context.Context, dutyID string, youthID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	duty, err := s.workflowRepo.FindEntityByID(ctx, dutyID)
	if err != nil {
		return err
	}
	if duty.Kind != domain.KindDuty {
		return fmt.Errorf("%w: entity %s is not a duty", apperrors.ErrValidation, dutyID)
	}
	if duty.State != domain.StateOpen {
		return fmt.Errorf("%w: duty %s is no longer open for enrollment", apperrors.ErrInvalidTransition, dutyID)
	}

	participant := domain.Participant{
		YouthID:  youthID,
		Status:   domain.ParticipantEnrolled,
		JoinedAt: time.Now(),
	}
	if err := s.workflowRepo.AddParticipant(ctx, dutyID, participant, youthID); err != nil {
		return err
	}
	logger.Info("Youth enrolled in duty", slog.String("duty_id", dutyID), slog.String("youth_id", youthID))
	return nil
}

// MarkAttendance records a participant sub-state. Only the coordinator may
// mark attendance, and only while the duty is in progress.
func (s *EntityService) MarkAttendance(ctx context.Context, dutyID string, req dto.AttendanceRequest, actor domain.Actor) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleCoordinator {
		return fmt.Errorf("%w: only the coordinator may mark attendance", apperrors.ErrForbidden)
	}

	duty, err := s.workflowRepo.FindEntityByID(ctx, dutyID)
	if err != nil {
		return err
	}
	if duty.Kind != domain.KindDuty {
		return fmt.Errorf("%w: entity %s is not a duty", apperrors.ErrValidation, dutyID)
	}
	if duty.State != domain.StateInProgress && duty.State != domain.StateCompleted {
		return fmt.Errorf("%w: attendance can only be marked once the duty has started", apperrors.ErrInvalidTransition)
	}

	status := domain.ParticipantStatus(req.Status)
	if err := s.workflowRepo.SetParticipantStatus(ctx, dutyID, req.YouthID, status, actor.ActorID); err != nil {
		return err
	}
	logger.Info("Attendance marked",
		slog.String("duty_id", dutyID),
		slog.String("youth_id", req.YouthID),
		slog.String("status", req.Status))
	return nil
}
