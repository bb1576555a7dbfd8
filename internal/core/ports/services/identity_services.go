package services

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/dto"
)

// IdentitySvcFacade is the identity collaborator: it resolves actor IDs to
// actors with roles, and authenticates credentials. Passwords are stored as
// bcrypt hashes only.
type IdentitySvcFacade interface {
	// Resolve returns the actor for an ID. Inactive actors resolve to
	// ErrForbidden; unknown IDs to ErrNotFound.
	Resolve(ctx context.Context, actorID string) (*domain.Actor, error)
	// Authenticate verifies credentials and returns a signed bearer token.
	Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Register creates a new actor with a hashed password.
	Register(ctx context.Context, req dto.RegisterActorRequest, creatorID string) (*domain.Actor, error)
}
