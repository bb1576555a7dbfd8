package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/core/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type EntityServiceTestSuite struct {
	suite.Suite
	mockWorkflow *MockWorkflowRepository
	mockLedger   *MockLedgerRepository
	service      *services.EntityService
	ctx          context.Context

	trainer     domain.Actor
	coordinator domain.Actor
	customer    domain.Actor
}

func (s *EntityServiceTestSuite) SetupTest() {
	s.mockWorkflow = new(MockWorkflowRepository)
	s.mockLedger = new(MockLedgerRepository)
	s.service = services.NewEntityService(s.mockWorkflow, s.mockLedger, testOrgRef)
	s.ctx = context.Background()

	s.trainer = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleTrainer, Active: true}
	s.coordinator = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleCoordinator, Active: true}
	s.customer = domain.Actor{ActorID: uuid.NewString(), Role: domain.RoleCustomer, Active: true}
}

func TestEntityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntityServiceTestSuite))
}

func (s *EntityServiceTestSuite) stockAccount(subjectRef string) *domain.LedgerAccount {
	return &domain.LedgerAccount{
		AccountID:   uuid.NewString(),
		SubjectKind: domain.SubjectStock,
		SubjectRef:  subjectRef,
		Balance:     decimal.NewFromInt(100),
	}
}

func (s *EntityServiceTestSuite) TestCreateMaterialRequestStartsPending() {
	materialID := uuid.NewString()
	s.mockLedger.On("FindAccountBySubject", s.ctx, materialID).Return(s.stockAccount(materialID), nil).Once()
	s.mockWorkflow.On("SaveEntity", s.ctx, mock.MatchedBy(func(e domain.WorkflowEntity) bool {
		return e.Kind == domain.KindMaterialRequest &&
			e.State == domain.StatePending &&
			e.OwnerID == s.trainer.ActorID &&
			e.SubjectRef == materialID &&
			e.Quantity == 5 &&
			e.Version == 1
	})).Return(nil).Once()

	req := dto.CreateMaterialRequestRequest{MaterialID: materialID, Quantity: 5}
	entity, err := s.service.CreateMaterialRequest(s.ctx, req, s.trainer)

	s.NoError(err)
	s.NotEmpty(entity.EntityID)
	s.mockWorkflow.AssertExpectations(s.T())
}

func (s *EntityServiceTestSuite) TestCreateMaterialRequestRequiresTrainer() {
	req := dto.CreateMaterialRequestRequest{MaterialID: uuid.NewString(), Quantity: 5}

	_, err := s.service.CreateMaterialRequest(s.ctx, req, s.customer)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockWorkflow.AssertNotCalled(s.T(), "SaveEntity", mock.Anything, mock.Anything)
}

func (s *EntityServiceTestSuite) TestCreateMaterialRequestUnknownMaterial() {
	materialID := uuid.NewString()
	s.mockLedger.On("FindAccountBySubject", s.ctx, materialID).Return(nil, apperrors.ErrNotFound).Once()

	req := dto.CreateMaterialRequestRequest{MaterialID: materialID, Quantity: 5}
	_, err := s.service.CreateMaterialRequest(s.ctx, req, s.trainer)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *EntityServiceTestSuite) TestCreateDonationCarriesOrgSubject() {
	s.mockWorkflow.On("SaveEntity", s.ctx, mock.MatchedBy(func(e domain.WorkflowEntity) bool {
		return e.Kind == domain.KindDonation &&
			e.State == domain.StatePending &&
			e.SubjectRef == testOrgRef &&
			e.Reference == "QWERTYU123" &&
			e.Amount.Equal(decimal.NewFromInt(1000))
	})).Return(nil).Once()

	req := dto.CreateDonationRequest{MpesaCode: "QWERTYU123", Amount: decimal.NewFromInt(1000)}
	_, err := s.service.CreateDonation(s.ctx, req, s.customer.ActorID)

	s.NoError(err)
	s.mockWorkflow.AssertExpectations(s.T())
}

func (s *EntityServiceTestSuite) TestCreateDonationRejectsNonPositiveAmount() {
	req := dto.CreateDonationRequest{MpesaCode: "QWERTYU123", Amount: decimal.Zero}

	_, err := s.service.CreateDonation(s.ctx, req, s.customer.ActorID)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EntityServiceTestSuite) TestCreateDutyCarriesSchedule() {
	scheduled := time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	s.mockWorkflow.On("SaveEntity", s.ctx, mock.MatchedBy(func(e domain.WorkflowEntity) bool {
		return e.Kind == domain.KindDuty &&
			e.State == domain.StateOpen &&
			e.Title == "Beach cleanup" &&
			e.SubjectRef == "Mombasa" &&
			e.Capacity == 12 &&
			e.ScheduledAt.Equal(scheduled)
	})).Return(nil).Once()

	req := dto.CreateDutyRequest{
		DutyName: "Beach cleanup",
		Location: "Mombasa",
		Date:     scheduled,
		Capacity: 12,
	}
	_, err := s.service.CreateDuty(s.ctx, req, s.coordinator)

	s.NoError(err)
	s.mockWorkflow.AssertExpectations(s.T())
}

func (s *EntityServiceTestSuite) TestEnrollYouthInOpenDuty() {
	dutyID := uuid.NewString()
	youthID := uuid.NewString()
	duty := &domain.WorkflowEntity{
		EntityID: dutyID,
		Kind:     domain.KindDuty,
		State:    domain.StateOpen,
		Capacity: 20,
	}
	s.mockWorkflow.On("FindEntityByID", s.ctx, dutyID).Return(duty, nil).Once()
	s.mockWorkflow.On("AddParticipant", s.ctx, dutyID, mock.MatchedBy(func(p domain.Participant) bool {
		return p.YouthID == youthID && p.Status == domain.ParticipantEnrolled
	}), youthID).Return(nil).Once()

	err := s.service.EnrollYouth(s.ctx, dutyID, youthID)

	s.NoError(err)
	s.mockWorkflow.AssertExpectations(s.T())
}

func (s *EntityServiceTestSuite) TestEnrollYouthRejectedOnceDutyStarted() {
	dutyID := uuid.NewString()
	duty := &domain.WorkflowEntity{EntityID: dutyID, Kind: domain.KindDuty, State: domain.StateInProgress}
	s.mockWorkflow.On("FindEntityByID", s.ctx, dutyID).Return(duty, nil).Once()

	err := s.service.EnrollYouth(s.ctx, dutyID, uuid.NewString())

	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.mockWorkflow.AssertNotCalled(s.T(), "AddParticipant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *EntityServiceTestSuite) TestMarkAttendanceRequiresCoordinator() {
	err := s.service.MarkAttendance(s.ctx, uuid.NewString(), dto.AttendanceRequest{YouthID: uuid.NewString(), Status: "present"}, s.trainer)

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *EntityServiceTestSuite) TestMarkAttendance() {
	dutyID := uuid.NewString()
	youthID := uuid.NewString()
	duty := &domain.WorkflowEntity{EntityID: dutyID, Kind: domain.KindDuty, State: domain.StateInProgress}
	s.mockWorkflow.On("FindEntityByID", s.ctx, dutyID).Return(duty, nil).Once()
	s.mockWorkflow.On("SetParticipantStatus", s.ctx, dutyID, youthID, domain.ParticipantPresent, s.coordinator.ActorID).Return(nil).Once()

	err := s.service.MarkAttendance(s.ctx, dutyID, dto.AttendanceRequest{YouthID: youthID, Status: "present"}, s.coordinator)

	s.NoError(err)
	s.mockWorkflow.AssertExpectations(s.T())
}

func (s *EntityServiceTestSuite) TestListEntitiesRejectsForeignState() {
	bad := "released"
	params := dto.ListEntitiesParams{State: &bad}

	_, err := s.service.ListEntities(s.ctx, domain.KindDonation, params)

	s.ErrorIs(err, apperrors.ErrValidation)
}
