package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// DispatcherService sits between the transport layer and the workflow engine.
// It resolves the acting actor, rejects commands the actor's role can never
// perform, and fans out post-commit side effects. The side effects run after
// the transition committed and cannot roll it back.
type DispatcherService struct {
	identity portssvc.IdentitySvcFacade
	engine   portssvc.WorkflowEngineSvc
	notifier portssvc.NotifierSvc
	renderer portssvc.ReceiptRenderer

	// renderTimeout bounds the detached receipt rendering goroutine.
	renderTimeout time.Duration
}

func NewDispatcherService(
	identity portssvc.IdentitySvcFacade,
	engine portssvc.WorkflowEngineSvc,
	notifier portssvc.NotifierSvc,
	renderer portssvc.ReceiptRenderer,
) *DispatcherService {
	return &DispatcherService{
		identity:      identity,
		engine:        engine,
		notifier:      notifier,
		renderer:      renderer,
		renderTimeout: 30 * time.Second,
	}
}

// Ensure DispatcherService implements portssvc.DispatcherSvc
var _ portssvc.DispatcherSvc = (*DispatcherService)(nil)

// rejectionStates are terminal states that end a workflow without a positive
// outcome; they never get a receipt.
var rejectionStates = map[domain.State]struct{}{
	domain.StateRejected:           {},
	domain.StateRejectedBySupplier: {},
	domain.StateInventoryRejected:  {},
}

// Dispatch validates and executes one transition command.
func (s *DispatcherService) Dispatch(ctx context.Context, actorID string, cmd dto.Command) (*portssvc.TransitionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind, ok := domain.ParseEntityKind(cmd.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %s", apperrors.ErrValidation, cmd.Kind)
	}
	toState := domain.State(cmd.ToState)
	if !stateBelongsToKind(kind, toState) {
		return nil, fmt.Errorf("%w: state %s is not valid for %s", apperrors.ErrValidation, cmd.ToState, cmd.Kind)
	}

	actor, err := s.identity.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// Coarse pre-check: if no rule of this kind names the actor's role for the
	// target state, the command cannot possibly succeed and the engine (and its
	// row lock) is never reached.
	if !roleMayTarget(actor.Role, kind, toState) {
		return nil, fmt.Errorf("%w: role %s cannot move %s to %s",
			apperrors.ErrForbidden, actor.Role, kind, toState)
	}

	result, err := s.engine.ApplyTransition(ctx, cmd.EntityID, *actor, toState, cmd.Payload.ToTransitionPayload())
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(result.Event)

	if s.renderer != nil && domain.IsTerminal(kind, toState) {
		if _, rejected := rejectionStates[toState]; !rejected {
			s.renderReceiptAsync(logger, result.Entity)
		}
	}

	return result, nil
}

func roleMayTarget(role domain.Role, kind domain.EntityKind, to domain.State) bool {
	for _, r := range domain.RolesForTarget(kind, to) {
		if r == role {
			return true
		}
	}
	return false
}

// renderReceiptAsync renders the receipt on a detached context so a slow or
// failing renderer can neither block the response nor undo the transition.
func (s *DispatcherService) renderReceiptAsync(logger *slog.Logger, entity *domain.WorkflowEntity) {
	entityCopy := *entity
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.renderTimeout)
		defer cancel()

		path, err := s.renderer.RenderReceipt(ctx, &entityCopy)
		if err != nil {
			logger.Error("Receipt rendering failed",
				slog.String("error", err.Error()),
				slog.String("entity_id", entityCopy.EntityID))
			return
		}
		logger.Info("Receipt rendered",
			slog.String("entity_id", entityCopy.EntityID),
			slog.String("path", path))
	}()
}
