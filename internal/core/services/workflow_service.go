package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// WorkflowEngineService executes declared transitions. It holds no per-kind
// logic itself; everything it enforces comes from the rule table in the
// domain package.
type WorkflowEngineService struct {
	workflowRepo portsrepo.WorkflowRepository
	// orgSubjectRef names the organization's finance account, the target of
	// every money effect.
	orgSubjectRef string
}

func NewWorkflowEngineService(workflowRepo portsrepo.WorkflowRepository, orgSubjectRef string) *WorkflowEngineService {
	return &WorkflowEngineService{
		workflowRepo:  workflowRepo,
		orgSubjectRef: orgSubjectRef,
	}
}

// Ensure WorkflowEngineService implements portssvc.WorkflowEngineSvc
var _ portssvc.WorkflowEngineSvc = (*WorkflowEngineService)(nil)

// ApplyTransition moves an entity to toState if a rule allows it for the
// acting actor. The rule lookup, role and binding checks, and the guard all
// run before any write; the state change, ledger effect and history record
// then commit in one storage transaction.
func (s *WorkflowEngineService) ApplyTransition(ctx context.Context, entityID string, actor domain.Actor, toState domain.State, payload domain.TransitionPayload) (*portssvc.TransitionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entity, err := s.workflowRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load entity for transition", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		}
		return nil, err
	}

	rule, ok := domain.FindRule(entity.Kind, entity.State, toState)
	if !ok {
		return nil, fmt.Errorf("%w: no rule moves %s from %s to %s",
			apperrors.ErrInvalidTransition, entity.Kind, entity.State, toState)
	}

	if err := checkActorBinding(rule, entity, actor); err != nil {
		return nil, err
	}

	if rule.Guard != nil {
		if err := rule.Guard(entity, payload); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	next := *entity
	if rule.Apply != nil {
		rule.Apply(&next, payload, actor.ActorID)
	}
	next.State = toState
	next.Version = entity.Version + 1
	next.LastUpdatedAt = now
	next.LastUpdatedBy = actor.ActorID

	var adjustment *portsrepo.LedgerAdjustment
	if rule.Effect != nil {
		amount := rule.Effect.Amount(&next, payload)
		delta := amount
		if rule.Effect.Direction == domain.EffectDebit {
			delta = amount.Neg()
		}
		adjustment = &portsrepo.LedgerAdjustment{
			SubjectRef: rule.Effect.AccountRef(&next, s.orgSubjectRef),
			Delta:      delta,
		}
	}

	write := portsrepo.TransitionWrite{
		Entity:          next,
		ExpectedVersion: entity.Version,
		Adjustment:      adjustment,
		History: domain.HistoryEntry{
			EntityID:   entityID,
			ActorID:    actor.ActorID,
			ActorRole:  actor.Role,
			FromState:  entity.State,
			ToState:    toState,
			Note:       payload.Note,
			RecordedAt: now,
		},
	}

	ledgerDelta, err := s.workflowRepo.CommitTransition(ctx, write)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transition lost a concurrency race", slog.String("entity_id", entityID), slog.String("to_state", string(toState)))
		} else if !isBusinessRuleError(err) {
			logger.Error("Failed to commit transition", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		}
		return nil, err
	}

	logger.Info("Transition committed",
		slog.String("entity_id", entityID),
		slog.String("kind", string(entity.Kind)),
		slog.String("from_state", string(entity.State)),
		slog.String("to_state", string(toState)),
		slog.String("actor_id", actor.ActorID))
	if ledgerDelta != nil {
		logger.Info("Ledger adjusted",
			slog.String("subject_ref", ledgerDelta.SubjectRef),
			slog.String("delta", ledgerDelta.Delta.String()),
			slog.String("new_balance", ledgerDelta.NewBalance.String()))
	}

	return &portssvc.TransitionResult{
		Entity: &next,
		Delta:  ledgerDelta,
		Event: domain.TransitionEvent{
			Kind:      entity.Kind,
			EntityID:  entityID,
			FromState: entity.State,
			ToState:   toState,
		},
	}, nil
}

// checkActorBinding enforces the rule's role requirement plus any owner or
// counterparty binding.
func checkActorBinding(rule *domain.TransitionRule, entity *domain.WorkflowEntity, actor domain.Actor) error {
	if actor.Role != rule.RequiredRole {
		return fmt.Errorf("%w: role %s cannot move %s to %s",
			apperrors.ErrForbidden, actor.Role, entity.Kind, rule.To)
	}
	if rule.RequireOwner && actor.ActorID != entity.OwnerID {
		return fmt.Errorf("%w: only the owner may perform this transition", apperrors.ErrForbidden)
	}
	if rule.RequireCounterparty {
		if entity.CounterpartyID == nil || *entity.CounterpartyID != actor.ActorID {
			return fmt.Errorf("%w: only the assigned counterparty may perform this transition", apperrors.ErrForbidden)
		}
	}
	return nil
}

// isBusinessRuleError separates expected rule rejections from real failures,
// so the log stays quiet on the former.
func isBusinessRuleError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidTransition) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrInsufficientBalance) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrNotFound)
}
