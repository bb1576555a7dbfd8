package mapping

import (
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/models"
)

// ToModelActor converts a domain Actor to its row shape.
func ToModelActor(d domain.Actor) models.Actor {
	return models.Actor{
		ActorID:      d.ActorID,
		Name:         d.Name,
		Email:        d.Email,
		Role:         string(d.Role),
		County:       d.County,
		PasswordHash: d.PasswordHash,
		Active:       d.Active,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainActor converts an actors row into a domain Actor.
func ToDomainActor(m models.Actor) domain.Actor {
	return domain.Actor{
		ActorID:      m.ActorID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         domain.Role(m.Role),
		County:       m.County,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
