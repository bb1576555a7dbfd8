package services

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/dto"
)

// DispatcherSvc validates an actor against a command before the workflow
// engine runs, and fans out post-commit side effects (notification, receipt
// rendering) that must never roll back the committed transition.
type DispatcherSvc interface {
	// Dispatch resolves the actor, performs the coarse role pre-check against
	// the command's (kind, toState) rule set, and invokes the engine. Returns
	// ErrForbidden before touching the engine when the role cannot possibly
	// perform the command.
	Dispatch(ctx context.Context, actorID string, cmd dto.Command) (*TransitionResult, error)
}
