package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	"github.com/matbus-aora/aora-backend/internal/models"
	"github.com/matbus-aora/aora-backend/internal/utils/mapping"
)

type PgxActorRepository struct {
	BaseRepository
}

// newPgxActorRepository creates a new repository for actor data.
func newPgxActorRepository(pool *pgxpool.Pool) portsrepo.ActorRepository {
	return &PgxActorRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxActorRepository implements portsrepo.ActorRepository
var _ portsrepo.ActorRepository = (*PgxActorRepository)(nil)

// SaveActor inserts a new actor. Duplicate emails fail with ErrDuplicate.
func (r *PgxActorRepository) SaveActor(ctx context.Context, actor domain.Actor) error {
	modelActor := mapping.ToModelActor(actor)
	query := `
		INSERT INTO actors (
			actor_id, name, email, role, county, password_hash, active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelActor.ActorID,
		modelActor.Name,
		modelActor.Email,
		modelActor.Role,
		modelActor.County,
		modelActor.PasswordHash,
		modelActor.Active,
		modelActor.CreatedAt,
		modelActor.CreatedBy,
		modelActor.LastUpdatedAt,
		modelActor.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return apperrors.NewAppError(409, "actor with email "+actor.Email+" already exists", apperrors.ErrDuplicate)
			}
		}
		return wrapDBError(err, "failed to insert actor "+modelActor.ActorID)
	}
	return nil
}

const actorColumns = `actor_id, name, email, role, county, password_hash, active,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanActor(row pgx.Row) (models.Actor, error) {
	var m models.Actor
	err := row.Scan(
		&m.ActorID,
		&m.Name,
		&m.Email,
		&m.Role,
		&m.County,
		&m.PasswordHash,
		&m.Active,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindActorByID retrieves an actor by their ID.
func (r *PgxActorRepository) FindActorByID(ctx context.Context, actorID string) (*domain.Actor, error) {
	query := `
		SELECT ` + actorColumns + `
		FROM actors
		WHERE actor_id = $1;
	`
	m, err := scanActor(r.Pool.QueryRow(ctx, query, actorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err, "failed to find actor "+actorID)
	}

	actor := mapping.ToDomainActor(m)
	return &actor, nil
}

// FindActorByEmail retrieves an actor by their email address.
func (r *PgxActorRepository) FindActorByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	query := `
		SELECT ` + actorColumns + `
		FROM actors
		WHERE email = $1;
	`
	m, err := scanActor(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err, "failed to find actor by email")
	}

	actor := mapping.ToDomainActor(m)
	return &actor, nil
}
