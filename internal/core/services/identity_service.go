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
	"github.com/matbus-aora/aora-backend/internal/utils"
)

// IdentityService resolves actors and authenticates credentials. Passwords
// only ever exist as bcrypt hashes outside the login request.
type IdentityService struct {
	actorRepo   portsrepo.ActorRepository
	jwtSecret   string
	jwtIssuer   string
	tokenExpiry time.Duration
}

func NewIdentityService(actorRepo portsrepo.ActorRepository, jwtSecret, jwtIssuer string, tokenExpiry time.Duration) *IdentityService {
	return &IdentityService{
		actorRepo:   actorRepo,
		jwtSecret:   jwtSecret,
		jwtIssuer:   jwtIssuer,
		tokenExpiry: tokenExpiry,
	}
}

// Ensure IdentityService implements portssvc.IdentitySvcFacade
var _ portssvc.IdentitySvcFacade = (*IdentityService)(nil)

// Resolve returns the actor for an ID. Deactivated actors cannot act.
func (s *IdentityService) Resolve(ctx context.Context, actorID string) (*domain.Actor, error) {
	actor, err := s.actorRepo.FindActorByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Active {
		return nil, fmt.Errorf("%w: actor %s is deactivated", apperrors.ErrForbidden, actorID)
	}
	return actor, nil
}

// Authenticate verifies credentials and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	actor, err := s.actorRepo.FindActorByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(req.Password, actor.PasswordHash) {
		logger.Warn("Failed login attempt", slog.String("actor_id", actor.ActorID))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	if !actor.Active {
		return nil, fmt.Errorf("%w: actor is deactivated", apperrors.ErrForbidden)
	}

	token, err := utils.GenerateJWT(actor.ActorID, s.jwtSecret, s.tokenExpiry, s.jwtIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		return nil, apperrors.NewAppError(500, "failed to sign token", err)
	}

	logger.Info("Actor authenticated", slog.String("actor_id", actor.ActorID), slog.String("role", string(actor.Role)))
	return &dto.LoginResponse{
		Token:   token,
		ActorID: actor.ActorID,
		Role:    string(actor.Role),
	}, nil
}

// Register creates a new actor with a hashed password. The role must be one
// of the declared roles; free-form role strings are rejected here so the rule
// table never sees a role it does not know.
func (s *IdentityService) Register(ctx context.Context, req dto.RegisterActorRequest, creatorID string) (*domain.Actor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %s", apperrors.ErrValidation, req.Role)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now()
	actor := domain.Actor{
		ActorID:      uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		County:       req.County,
		PasswordHash: hash,
		Active:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.actorRepo.SaveActor(ctx, actor); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save actor", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Actor registered", slog.String("actor_id", actor.ActorID), slog.String("role", string(role)))
	return &actor, nil
}
