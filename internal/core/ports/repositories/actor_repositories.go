package repositories

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
)

// ActorRepository is the persistence surface for actors (staff and customers).
type ActorRepository interface {
	SaveActor(ctx context.Context, actor domain.Actor) error
	FindActorByID(ctx context.Context, actorID string) (*domain.Actor, error)
	FindActorByEmail(ctx context.Context, email string) (*domain.Actor, error)
}
