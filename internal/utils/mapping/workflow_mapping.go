package mapping

import (
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/models"
)

// ToModelWorkflowEntity converts a domain WorkflowEntity to its row shape.
// Participants are persisted separately in duty_participants.
func ToModelWorkflowEntity(d domain.WorkflowEntity) models.WorkflowEntity {
	return models.WorkflowEntity{
		EntityID:         d.EntityID,
		Kind:             string(d.Kind),
		State:            string(d.State),
		OwnerID:          d.OwnerID,
		CounterpartyID:   d.CounterpartyID,
		SubjectRef:       d.SubjectRef,
		Quantity:         d.Quantity,
		QuantityIssued:   d.QuantityIssued,
		QuantityReturned: d.QuantityReturned,
		Amount:           d.Amount,
		Reference:        d.Reference,
		Title:            d.Title,
		Note:             d.Note,
		Capacity:         d.Capacity,
		ScheduledAt:      d.ScheduledAt,
		Version:          d.Version,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWorkflowEntity converts a row into a domain WorkflowEntity.
func ToDomainWorkflowEntity(m models.WorkflowEntity) domain.WorkflowEntity {
	return domain.WorkflowEntity{
		EntityID:         m.EntityID,
		Kind:             domain.EntityKind(m.Kind),
		State:            domain.State(m.State),
		OwnerID:          m.OwnerID,
		CounterpartyID:   m.CounterpartyID,
		SubjectRef:       m.SubjectRef,
		Quantity:         m.Quantity,
		QuantityIssued:   m.QuantityIssued,
		QuantityReturned: m.QuantityReturned,
		Amount:           m.Amount,
		Reference:        m.Reference,
		Title:            m.Title,
		Note:             m.Note,
		Capacity:         m.Capacity,
		ScheduledAt:      m.ScheduledAt,
		Version:          m.Version,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainParticipant converts a duty_participants row.
func ToDomainParticipant(m models.Participant) domain.Participant {
	return domain.Participant{
		YouthID:  m.YouthID,
		Status:   domain.ParticipantStatus(m.Status),
		JoinedAt: m.JoinedAt,
	}
}

// ToDomainParticipantSlice converts a slice of duty_participants rows.
func ToDomainParticipantSlice(ms []models.Participant) []domain.Participant {
	out := make([]domain.Participant, len(ms))
	for i, m := range ms {
		out[i] = ToDomainParticipant(m)
	}
	return out
}

// ToDomainHistoryEntry converts a workflow_history row.
func ToDomainHistoryEntry(m models.HistoryEntry) domain.HistoryEntry {
	return domain.HistoryEntry{
		EntityID:   m.EntityID,
		Seq:        m.Seq,
		ActorID:    m.ActorID,
		ActorRole:  domain.Role(m.ActorRole),
		FromState:  domain.State(m.FromState),
		ToState:    domain.State(m.ToState),
		Note:       m.Note,
		RecordedAt: m.RecordedAt,
	}
}

// ToDomainHistorySlice converts a slice of workflow_history rows.
func ToDomainHistorySlice(ms []models.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainHistoryEntry(m)
	}
	return out
}
