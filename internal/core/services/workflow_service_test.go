package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	"github.com/matbus-aora/aora-backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testOrgRef = "org-finance"

// --- Mock WorkflowRepository ---
type MockWorkflowRepository struct {
	mock.Mock
}

// Ensure MockWorkflowRepository implements portsrepo.WorkflowRepository
var _ portsrepo.WorkflowRepository = (*MockWorkflowRepository)(nil)

func (m *MockWorkflowRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.WorkflowEntity, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowEntity), args.Error(1)
}

func (m *MockWorkflowRepository) ListEntities(ctx context.Context, kind domain.EntityKind, state *domain.State, limit int, nextToken *string) ([]domain.WorkflowEntity, *string, error) {
	args := m.Called(ctx, kind, state, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.WorkflowEntity), token, args.Error(2)
}

func (m *MockWorkflowRepository) ListHistory(ctx context.Context, entityID string) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockWorkflowRepository) SaveEntity(ctx context.Context, entity domain.WorkflowEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockWorkflowRepository) CommitTransition(ctx context.Context, write portsrepo.TransitionWrite) (*domain.LedgerDelta, error) {
	args := m.Called(ctx, write)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerDelta), args.Error(1)
}

func (m *MockWorkflowRepository) AddParticipant(ctx context.Context, entityID string, participant domain.Participant, actorID string) error {
	args := m.Called(ctx, entityID, participant, actorID)
	return args.Error(0)
}

func (m *MockWorkflowRepository) SetParticipantStatus(ctx context.Context, entityID, youthID string, status domain.ParticipantStatus, actorID string) error {
	args := m.Called(ctx, entityID, youthID, status, actorID)
	return args.Error(0)
}

// --- Test Suite ---
type WorkflowEngineTestSuite struct {
	suite.Suite
	mockRepo *MockWorkflowRepository
	engine   *services.WorkflowEngineService
	ctx      context.Context

	inventoryManager domain.Actor
	financeManager   domain.Actor
	trainer          domain.Actor
	dutiesManager    domain.Actor
}

func (s *WorkflowEngineTestSuite) SetupTest() {
	s.mockRepo = new(MockWorkflowRepository)
	s.engine = services.NewWorkflowEngineService(s.mockRepo, testOrgRef)
	s.ctx = context.Background()

	s.inventoryManager = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleInventory, Active: true}
	s.financeManager = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleFinanceManager, Active: true}
	s.trainer = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleTrainer, Active: true}
	s.dutiesManager = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleDutiesManager, Active: true}
}

func TestWorkflowEngineTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowEngineTestSuite))
}

func (s *WorkflowEngineTestSuite) materialRequest(state domain.State, owner string) *domain.WorkflowEntity {
	return &domain.WorkflowEntity{
		EntityID:   uuid.NewString(),
		Kind:       domain.KindMaterialRequest,
		State:      state,
		OwnerID:    owner,
		SubjectRef: "material-1",
		Quantity:   10,
		Version:    3,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().Add(-time.Hour),
		},
	}
}

func (s *WorkflowEngineTestSuite) TestReleaseMaterialDebitsStock() {
	entity := s.materialRequest(domain.StatePending, s.trainer.ActorID)
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	delta := &domain.LedgerDelta{SubjectRef: "material-1", Delta: decimal.NewFromInt(-10), NewBalance: decimal.NewFromInt(90)}
	s.mockRepo.On("CommitTransition", s.ctx, mock.MatchedBy(func(w portsrepo.TransitionWrite) bool {
		return w.Entity.State == domain.StateReleased &&
			w.Entity.QuantityIssued == 10 &&
			w.ExpectedVersion == 3 &&
			w.Entity.Version == 4 &&
			w.Adjustment != nil &&
			w.Adjustment.SubjectRef == "material-1" &&
			w.Adjustment.Delta.Equal(decimal.NewFromInt(-10)) &&
			w.History.FromState == domain.StatePending &&
			w.History.ToState == domain.StateReleased
	})).Return(delta, nil).Once()

	result, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.inventoryManager, domain.StateReleased, domain.TransitionPayload{})

	s.NoError(err)
	s.Equal(domain.StateReleased, result.Entity.State)
	s.Equal(delta, result.Delta)
	s.Equal(domain.TransitionEvent{
		Kind:      domain.KindMaterialRequest,
		EntityID:  entity.EntityID,
		FromState: domain.StatePending,
		ToState:   domain.StateReleased,
	}, result.Event)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *WorkflowEngineTestSuite) TestDonationApprovalCreditsOrgAccount() {
	entity := &domain.WorkflowEntity{
		EntityID:   uuid.NewString(),
		Kind:       domain.KindDonation,
		State:      domain.StatePending,
		OwnerID:    uuid.NewString(),
		SubjectRef: testOrgRef,
		Amount:     decimal.NewFromInt(2500),
		Reference:  "QWERTYU123",
		Version:    1,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	delta := &domain.LedgerDelta{SubjectRef: testOrgRef, Delta: decimal.NewFromInt(2500), NewBalance: decimal.NewFromInt(12500)}
	s.mockRepo.On("CommitTransition", s.ctx, mock.MatchedBy(func(w portsrepo.TransitionWrite) bool {
		return w.Entity.State == domain.StateApproved &&
			w.Adjustment != nil &&
			w.Adjustment.SubjectRef == testOrgRef &&
			w.Adjustment.Delta.Equal(decimal.NewFromInt(2500))
	})).Return(delta, nil).Once()

	result, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.financeManager, domain.StateApproved, domain.TransitionPayload{})

	s.NoError(err)
	s.Equal(delta, result.Delta)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *WorkflowEngineTestSuite) TestAlreadyProcessedIsInvalidTransition() {
	// A donation that was already approved has no outgoing rules; asking to
	// approve it again is the generic form of "request already processed".
	entity := &domain.WorkflowEntity{
		EntityID: uuid.NewString(),
		Kind:     domain.KindDonation,
		State:    domain.StateApproved,
		Version:  2,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.financeManager, domain.StateApproved, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.mockRepo.AssertNotCalled(s.T(), "CommitTransition", mock.Anything, mock.Anything)
}

func (s *WorkflowEngineTestSuite) TestUnknownEntity() {
	entityID := uuid.NewString()
	s.mockRepo.On("FindEntityByID", s.ctx, entityID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entityID, s.inventoryManager, domain.StateReleased, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *WorkflowEngineTestSuite) TestWrongRoleIsForbidden() {
	entity := s.materialRequest(domain.StatePending, s.trainer.ActorID)
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.trainer, domain.StateReleased, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockRepo.AssertNotCalled(s.T(), "CommitTransition", mock.Anything, mock.Anything)
}

func (s *WorkflowEngineTestSuite) TestReturnByNonOwnerIsForbidden() {
	otherTrainer := domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleTrainer, Active: true}
	entity := s.materialRequest(domain.StateReleased, s.trainer.ActorID)
	entity.QuantityIssued = 10
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, otherTrainer, domain.StateReturned, domain.TransitionPayload{Quantity: 10})

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *WorkflowEngineTestSuite) TestDeliveryByWrongSupplierIsForbidden() {
	acceptedSupplier := uuid.NewString()
	otherSupplier := domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleSupplier, Active: true}
	entity := &domain.WorkflowEntity{
		EntityID:       uuid.NewString(),
		Kind:           domain.KindSupplyRequest,
		State:          domain.StateAcceptedBySupplier,
		CounterpartyID: &acceptedSupplier,
		SubjectRef:     "material-1",
		Quantity:       5,
		Version:        2,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, otherSupplier, domain.StateDelivered, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *WorkflowEngineTestSuite) TestPartialReturnGuardRejectsFullQuantity() {
	entity := s.materialRequest(domain.StateReleased, s.trainer.ActorID)
	entity.QuantityIssued = 10
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	// 10 outstanding: a "partial" return of all 10 must use the returned state.
	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.trainer, domain.StatePartiallyReturned, domain.TransitionPayload{Quantity: 10})

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "CommitTransition", mock.Anything, mock.Anything)
}

func (s *WorkflowEngineTestSuite) TestSupplierQuoteSetsCounterpartyAndAmount() {
	supplier := domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleSupplier, Active: true}
	entity := &domain.WorkflowEntity{
		EntityID:   uuid.NewString(),
		Kind:       domain.KindSupplyRequest,
		State:      domain.StatePending,
		SubjectRef: "material-1",
		Quantity:   4,
		Version:    1,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()
	s.mockRepo.On("CommitTransition", s.ctx, mock.MatchedBy(func(w portsrepo.TransitionWrite) bool {
		return w.Entity.State == domain.StateAcceptedBySupplier &&
			w.Entity.CounterpartyID != nil &&
			*w.Entity.CounterpartyID == supplier.ActorID &&
			w.Entity.Amount.Equal(decimal.NewFromInt(600)) && // 4 * 150
			w.Adjustment == nil
	})).Return(nil, nil).Once()

	result, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, supplier, domain.StateAcceptedBySupplier,
		domain.TransitionPayload{UnitPrice: decimal.NewFromInt(150)})

	s.NoError(err)
	s.Nil(result.Delta)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *WorkflowEngineTestSuite) TestInsufficientBalancePropagates() {
	entity := s.materialRequest(domain.StatePending, s.trainer.ActorID)
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()
	s.mockRepo.On("CommitTransition", s.ctx, mock.Anything).Return(nil, apperrors.ErrInsufficientBalance).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.inventoryManager, domain.StateReleased, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrInsufficientBalance)
}

func (s *WorkflowEngineTestSuite) TestVersionConflictPropagatesWithoutRetry() {
	entity := s.materialRequest(domain.StatePending, s.trainer.ActorID)
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()
	s.mockRepo.On("CommitTransition", s.ctx, mock.Anything).Return(nil, apperrors.ErrConflict).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.inventoryManager, domain.StateReleased, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrConflict)
	// The engine never retries on its own; the caller decides.
	s.mockRepo.AssertNumberOfCalls(s.T(), "CommitTransition", 1)
}

func (s *WorkflowEngineTestSuite) TestDutyApprovalBlockedByOpenParticipant() {
	entity := &domain.WorkflowEntity{
		EntityID: uuid.NewString(),
		Kind:     domain.KindDuty,
		State:    domain.StateCompleted,
		Title:    "Beach cleanup",
		Version:  5,
		Participants: []domain.Participant{
			{YouthID: uuid.NewString(), Status: domain.ParticipantCompleted},
			{YouthID: uuid.NewString(), Status: domain.ParticipantEnrolled},
			{YouthID: uuid.NewString(), Status: domain.ParticipantAbsent},
		},
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.dutiesManager, domain.StateApproved, domain.TransitionPayload{})

	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.mockRepo.AssertNotCalled(s.T(), "CommitTransition", mock.Anything, mock.Anything)
}

func (s *WorkflowEngineTestSuite) TestDutyApprovalWithAllParticipantsSettled() {
	entity := &domain.WorkflowEntity{
		EntityID: uuid.NewString(),
		Kind:     domain.KindDuty,
		State:    domain.StateCompleted,
		Title:    "Beach cleanup",
		Version:  5,
		Participants: []domain.Participant{
			{YouthID: uuid.NewString(), Status: domain.ParticipantCompleted},
			{YouthID: uuid.NewString(), Status: domain.ParticipantAbsent},
		},
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()
	s.mockRepo.On("CommitTransition", s.ctx, mock.MatchedBy(func(w portsrepo.TransitionWrite) bool {
		return w.Entity.State == domain.StateApproved && w.Adjustment == nil
	})).Return(nil, nil).Once()

	result, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.dutiesManager, domain.StateApproved, domain.TransitionPayload{})

	s.NoError(err)
	s.Equal(domain.StateApproved, result.Entity.State)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *WorkflowEngineTestSuite) TestPaymentRequiresValidMpesaCode() {
	entity := &domain.WorkflowEntity{
		EntityID:   uuid.NewString(),
		Kind:       domain.KindSupplyRequest,
		State:      domain.StateInventoryAccepted,
		SubjectRef: "material-1",
		Quantity:   4,
		Amount:     decimal.NewFromInt(600),
		Version:    4,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Twice()

	_, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.financeManager, domain.StatePaid,
		domain.TransitionPayload{Reference: "SHORT"})
	s.ErrorIs(err, apperrors.ErrValidation)

	// Zeroes are not part of the M-PESA alphabet.
	_, err = s.engine.ApplyTransition(s.ctx, entity.EntityID, s.financeManager, domain.StatePaid,
		domain.TransitionPayload{Reference: "QWERTYU100"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WorkflowEngineTestSuite) TestPaymentDebitsOrgFinanceAccount() {
	entity := &domain.WorkflowEntity{
		EntityID:   uuid.NewString(),
		Kind:       domain.KindSupplyRequest,
		State:      domain.StateInventoryAccepted,
		SubjectRef: "material-1",
		Quantity:   4,
		Amount:     decimal.NewFromInt(600),
		Version:    4,
	}
	s.mockRepo.On("FindEntityByID", s.ctx, entity.EntityID).Return(entity, nil).Once()

	delta := &domain.LedgerDelta{SubjectRef: testOrgRef, Delta: decimal.NewFromInt(-600), NewBalance: decimal.NewFromInt(400)}
	s.mockRepo.On("CommitTransition", s.ctx, mock.MatchedBy(func(w portsrepo.TransitionWrite) bool {
		// The money leaves the organization account, not the material account.
		return w.Adjustment != nil &&
			w.Adjustment.SubjectRef == testOrgRef &&
			w.Adjustment.Delta.Equal(decimal.NewFromInt(-600)) &&
			w.Entity.Reference == "QWERTYU123"
	})).Return(delta, nil).Once()

	result, err := s.engine.ApplyTransition(s.ctx, entity.EntityID, s.financeManager, domain.StatePaid,
		domain.TransitionPayload{Reference: "QWERTYU123"})

	s.NoError(err)
	s.Equal(delta, result.Delta)
	s.mockRepo.AssertExpectations(s.T())
}
